package gencase

import (
	"context"
	"fmt"
	"time"

	"autocase/internal/featurepoint"
	"autocase/internal/llm"
	"autocase/internal/logging"
)

// genState 是单个功能点的生成状态机。传输/鉴权错误直接出错返回，
// 永远不进入 Retrying，修复预算只花在内容问题上。
type genState int

const (
	stateRequesting genState = iota
	stateParsing
	stateValidating
	stateRetrying
	stateAccepted
	stateExhausted
)

// GenerationFailedError 修复预算耗尽，单个功能点生成失败。
type GenerationFailedError struct {
	Module   string
	Feature  string
	Attempts int
	LastErr  error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("LLM 生成失败（模块 %s / 功能 %s，共尝试 %d 次）：%v", e.Module, e.Feature, e.Attempts, e.LastErr)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.LastErr
}

// Controller 驱动一个功能点的生成。各功能点之间不共享可变状态。
type Controller struct {
	Gateway      llm.Gateway
	SystemPrompt string
	RetryCount   int
	RetrySuffix  string
	Logger       *logging.Logger
}

// Generate 执行 Requesting → Parsing → Validating → {Accepted|Retrying|Exhausted}。
// 每个功能点最多发出 RetryCount+1 次请求。
func (c *Controller) Generate(ctx context.Context, fp featurepoint.FeaturePoint) ([]CaseRecord, error) {
	var (
		attempt   int
		raw       string
		arrayText string
		records   []CaseRecord
		lastErr   error
	)

	st := stateRequesting
	for {
		switch st {
		case stateRequesting:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			req := BuildRequest(c.SystemPrompt, fp, attempt, c.RetrySuffix)
			c.Logger.Emit(logging.Event{Event: "api_request", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1})
			start := time.Now()
			text, err := c.Gateway.Generate(ctx, req)
			if err != nil {
				c.Logger.Emit(logging.Event{Level: "error", Event: "api_error", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1, Error: err.Error()})
				return nil, err
			}
			c.Logger.Emit(logging.Event{Event: "api_response", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1, LatencyMS: time.Since(start).Milliseconds()})
			raw = text
			st = stateParsing

		case stateParsing:
			text, err := ExtractJSONArray(raw)
			if err != nil {
				lastErr = err
				c.Logger.Emit(logging.Event{Level: "warn", Event: "parse_error", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1, Error: err.Error()})
				st = stateRetrying
				continue
			}
			arrayText = text
			st = stateValidating

		case stateValidating:
			recs, err := ValidateRecords(arrayText)
			if err != nil {
				lastErr = err
				c.Logger.Emit(logging.Event{Level: "warn", Event: "validate_error", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1, Error: err.Error()})
				st = stateRetrying
				continue
			}
			records = recs
			st = stateAccepted

		case stateRetrying:
			if attempt < c.RetryCount {
				attempt++
				c.Logger.Emit(logging.Event{Level: "warn", Event: "retry", Module: fp.Module, Feature: fp.Feature, Attempt: attempt + 1})
				st = stateRequesting
			} else {
				st = stateExhausted
			}

		case stateAccepted:
			return records, nil

		case stateExhausted:
			return nil, &GenerationFailedError{
				Module:   fp.Module,
				Feature:  fp.Feature,
				Attempts: attempt + 1,
				LastErr:  lastErr,
			}
		}
	}
}
