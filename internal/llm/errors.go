package llm

import (
	"errors"
	"fmt"
)

// ErrDisabled 配置关闭了 LLM，调用方应在任何网络请求前短路。
var ErrDisabled = errors.New("LLM 已禁用，请在 llm.yaml 中设置 enabled: true")

// AuthError 凭证缺失或无效。不会被 JSON 修复循环重试。
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "鉴权失败：" + e.Reason
}

// TransportError 网络失败、超时或非 2xx 状态。不会被 JSON 修复循环重试。
type TransportError struct {
	Status int
	Reason string
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("请求失败（HTTP %d）：%s", e.Status, e.Reason)
	}
	return "请求失败：" + e.Reason
}
