// Package providers 定义翻译提供商的基础接口和错误分类
package providers

import (
	"context"
	"errors"
	"strings"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// APIEndpoint API地址
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// Timeout 单次调用超时
	Timeout time.Duration `json:"timeout"`

	// MaxRetries 最大重试次数
	MaxRetries int `json:"max_retries"`

	// RetryDelay 重试间隔
	RetryDelay time.Duration `json:"retry_delay"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// ProviderRequest 提供商请求
type ProviderRequest struct {
	// Prompt 完整的翻译指令
	Prompt string `json:"prompt"`

	// MaxTokens 输出长度上限
	MaxTokens int `json:"max_tokens"`

	// Temperature 生成温度，翻译任务使用较低的值保证稳定输出
	Temperature float32 `json:"temperature"`
}

// ProviderResponse 提供商响应
type ProviderResponse struct {
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
}

// TranslationProvider 翻译提供商接口
type TranslationProvider interface {
	// Translate 执行一次翻译调用
	Translate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// GetName 获取提供商名称
	GetName() string
}

// 错误代码常量
const (
	CodeRateLimit      = "rate_limit"
	CodeAuth           = "auth"
	CodeInvalidRequest = "invalid_request"
	CodeServerError    = "server_error"
	CodeTimeout        = "timeout"
	CodeUnknown        = "unknown"
)

// Error 提供商错误，携带结构化的错误代码
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error 实现error接口
func (e *Error) Error() string {
	return "[" + e.Code + "] " + e.Message
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case CodeRateLimit, CodeTimeout, CodeServerError:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapError 包装底层错误
func WrapError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRateLimit 判断错误是否为速率限制/配额耗尽
//
// 优先使用结构化的错误代码；对丢失了状态码的传输层错误，
// 退回到检查小写错误文本中的限流特征，这只作为最后手段
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == CodeRateLimit
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"429", "rate limit", "rate_limit", "quota", "resource exhausted"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
