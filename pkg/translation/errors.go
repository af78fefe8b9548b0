package translation

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrNoAPIKey 没有可用的API密钥
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrEmptyText 空文本错误
	ErrEmptyText = errors.New("empty text provided")

	// ErrNoProvider 翻译提供商未设置
	ErrNoProvider = errors.New("translation provider not configured")

	// ErrRetryExhausted 重试次数用尽
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// 错误代码常量
const (
	ErrCodeConfig    = "CONFIG_ERROR"
	ErrCodeRateLimit = "RATE_LIMIT_ERROR"
	ErrCodeLLM       = "LLM_ERROR"
	ErrCodeTimeout   = "TIMEOUT_ERROR"
	ErrCodeCanceled  = "CANCELED_ERROR"
	ErrCodeUnknown   = "UNKNOWN_ERROR"
)

// TranslationError 翻译错误
type TranslationError struct {
	Code    string // 错误代码
	Message string // 错误消息
	ChunkID string // 发生错误的块（可选）
	Cause   error  // 原因
}

// Error 实现error接口
func (e *TranslationError) Error() string {
	if e.ChunkID != "" {
		return fmt.Sprintf("[%s] %s (chunk %s)", e.Code, e.Message, e.ChunkID)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// NewTranslationError 创建翻译错误
func NewTranslationError(code, message string, cause error) *TranslationError {
	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError 包装错误，已经是TranslationError时保留原有代码
func WrapError(err error, code, message string) *TranslationError {
	if err == nil {
		return nil
	}

	var te *TranslationError
	if errors.As(err, &te) {
		return &TranslationError{
			Code:    te.Code,
			Message: message + ": " + te.Message,
			ChunkID: te.ChunkID,
			Cause:   te,
		}
	}

	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsConfigError 判断是否为配置错误（不可重试，直接暴露给调用方）
func IsConfigError(err error) bool {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Code == ErrCodeConfig
	}
	return errors.Is(err, ErrNoAPIKey)
}
