package translation

import (
	"time"

	"go.uber.org/zap"
)

// executorOptions 执行器选项
type executorOptions struct {
	logger      *zap.Logger
	prompt      *PromptBuilder
	maxAttempts int
	temperature float32
	maxTokens   int
}

// ExecutorOption 执行器选项函数
type ExecutorOption func(*executorOptions)

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(o *executorOptions) {
		o.logger = logger
	}
}

// WithPromptBuilder 设置提示词构建器
func WithPromptBuilder(pb *PromptBuilder) ExecutorOption {
	return func(o *executorOptions) {
		o.prompt = pb
	}
}

// WithMaxAttempts 设置单个块的最大尝试次数
func WithMaxAttempts(n int) ExecutorOption {
	return func(o *executorOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithTemperature 设置生成温度
func WithTemperature(t float32) ExecutorOption {
	return func(o *executorOptions) {
		o.temperature = t
	}
}

// WithMaxOutputTokens 设置输出长度上限
func WithMaxOutputTokens(n int) ExecutorOption {
	return func(o *executorOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// batcherOptions 批量翻译选项
type batcherOptions struct {
	logger      *zap.Logger
	streamDelay time.Duration
	syncDelay   time.Duration
}

// BatcherOption 批量翻译选项函数
type BatcherOption func(*batcherOptions)

// WithBatchLogger 设置日志记录器
func WithBatchLogger(logger *zap.Logger) BatcherOption {
	return func(o *batcherOptions) {
		o.logger = logger
	}
}

// WithStreamDelay 设置流式翻译的块间延迟
func WithStreamDelay(d time.Duration) BatcherOption {
	return func(o *batcherOptions) {
		if d >= 0 {
			o.streamDelay = d
		}
	}
}

// WithSyncDelay 设置同步翻译的块间延迟
func WithSyncDelay(d time.Duration) BatcherOption {
	return func(o *batcherOptions) {
		if d >= 0 {
			o.syncDelay = d
		}
	}
}
