package config

import (
	"fmt"
	"strings"
)

const (
	APIModeResponses       = "responses"
	APIModeChatCompletions = "chat_completions"

	OnFailureAbort    = "abort"
	OnFailureContinue = "continue"
)

// Config 是 llm.yaml 的完整结构。
type Config struct {
	Enabled           bool    `yaml:"enabled"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	BaseURL           string  `yaml:"base_url"`
	APIMode           string  `yaml:"api_mode"`
	Model             string  `yaml:"model"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	FrequencyPenalty  float64 `yaml:"frequency_penalty"`
	PresencePenalty   float64 `yaml:"presence_penalty"`
	MaxTokens         int     `yaml:"max_tokens"`
	RequestTimeoutSec int     `yaml:"request_timeout_sec"`
	RetryCount        int     `yaml:"retry_count"`
	RetryPromptSuffix string  `yaml:"retry_prompt_suffix"`
	Concurrency       int     `yaml:"concurrency"`
	OnFailure         string  `yaml:"on_failure"`
}

// defaultConfig 在反序列化之前先填好默认值，配置里没写的字段保持默认。
func defaultConfig() *Config {
	return &Config{
		Enabled:           true,
		APIKeyEnv:         "OPENAI_API_KEY",
		APIMode:           APIModeResponses,
		Model:             "gpt-4o-mini",
		Temperature:       0.2,
		TopP:              1.0,
		MaxTokens:         2000,
		RequestTimeoutSec: 120,
		RetryCount:        2,
		RetryPromptSuffix: "再次提醒：只输出JSON数组，不要包含任何解释或其它文本。",
		Concurrency:       1,
		OnFailure:         OnFailureAbort,
	}
}

func (c *Config) validate() error {
	c.APIMode = strings.TrimSpace(c.APIMode)
	switch c.APIMode {
	case APIModeResponses, APIModeChatCompletions:
	default:
		return fmt.Errorf("api_mode 不支持：%s", c.APIMode)
	}
	c.OnFailure = strings.TrimSpace(c.OnFailure)
	switch c.OnFailure {
	case OnFailureAbort, OnFailureContinue:
	default:
		return fmt.Errorf("on_failure 不支持：%s", c.OnFailure)
	}
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		return fmt.Errorf("api_key_env 不能为空")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model 不能为空")
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2000
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = 120
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	return nil
}
