package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"autocase/internal/config"
)

// Request 一次生成请求。RetryAttempt 仅用于日志，重试由调用方负责。
type Request struct {
	SystemPrompt string
	UserContent  string
	RetryAttempt int
}

// Gateway 对模型端点的单次阻塞调用，内部不做任何重试。
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New 按配置选定一种传输形态，启动时选择一次，之后不再分支。
func New(cfg *config.Config) (Gateway, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	apiKey := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	if apiKey == "" {
		return nil, &AuthError{Reason: fmt.Sprintf("未找到API Key环境变量: %s", cfg.APIKeyEnv)}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// 单次调用语义：SDK 自身的重试必须关掉
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second}),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	switch cfg.APIMode {
	case config.APIModeResponses:
		return &responsesGateway{client: client, cfg: cfg}, nil
	case config.APIModeChatCompletions:
		return &chatGateway{client: client, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("api_mode 不支持：%s", cfg.APIMode)
	}
}

type responsesGateway struct {
	client openai.Client
	cfg    *config.Config
}

func (g *responsesGateway) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(g.cfg.Model),
		Instructions:    openai.String(req.SystemPrompt),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(req.UserContent)},
		Temperature:     openai.Float(g.cfg.Temperature),
		TopP:            openai.Float(g.cfg.TopP),
		MaxOutputTokens: openai.Int(int64(g.cfg.MaxTokens)),
	})
	if err != nil {
		return "", classify(err)
	}
	return resp.OutputText(), nil
}

type chatGateway struct {
	client openai.Client
	cfg    *config.Config
}

func (g *chatGateway) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserContent),
		},
		Temperature:      openai.Float(g.cfg.Temperature),
		TopP:             openai.Float(g.cfg.TopP),
		MaxTokens:        openai.Int(int64(g.cfg.MaxTokens)),
		FrequencyPenalty: openai.Float(g.cfg.FrequencyPenalty),
		PresencePenalty:  openai.Float(g.cfg.PresencePenalty),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classify 把 SDK 错误归入鉴权/传输两类，供调用方区分是否可进入修复循环。
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return &AuthError{Reason: apiErr.Error()}
		}
		return &TransportError{Status: apiErr.StatusCode, Reason: apiErr.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Reason: "请求超时：" + err.Error()}
	}
	return &TransportError{Reason: err.Error()}
}
