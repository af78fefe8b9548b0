package translation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-glossary-translator/pkg/keypool"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/providers"
)

// 默认参数
const (
	defaultMaxAttempts     = 3
	defaultTemperature     = 0.3
	defaultMaxOutputTokens = 4096
)

// Executor 单个文本块的翻译执行器
//
// 封装术语筛选、提示词构建、翻译调用、失败分类与密钥轮换重试
type Executor struct {
	provider    providers.TranslationProvider
	pool        *keypool.Pool
	prompt      *PromptBuilder
	logger      *zap.Logger
	maxAttempts int
	temperature float32
	maxTokens   int
}

// NewExecutor 创建翻译执行器
func NewExecutor(provider providers.TranslationProvider, pool *keypool.Pool, opts ...ExecutorOption) *Executor {
	options := executorOptions{
		maxAttempts: defaultMaxAttempts,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	if options.prompt == nil {
		options.prompt = NewPromptBuilder("", "")
	}

	return &Executor{
		provider:    provider,
		pool:        pool,
		prompt:      options.prompt,
		logger:      options.logger,
		maxAttempts: options.maxAttempts,
		temperature: options.temperature,
		maxTokens:   options.maxTokens,
	}
}

// Translate 翻译单个文本块并强制执行术语表
//
// 没有可用密钥时立即返回配置错误，不做重试。
// 调用失败被分类为速率限制时尝试轮换密钥，轮换成功则立即用新密钥重试，
// 最多尝试 maxAttempts 次；轮换失败或其他类型的失败直接终止并包装最后的错误。
func (e *Executor) Translate(ctx context.Context, chunk Chunk, glossary []GlossaryEntry) (*TranslatedChunk, error) {
	if e.provider == nil {
		return nil, NewTranslationError(ErrCodeConfig, "translation provider not configured", ErrNoProvider)
	}
	if _, ok := e.pool.Current(); !ok {
		return nil, NewTranslationError(ErrCodeConfig, "no API key configured", ErrNoAPIKey)
	}

	relevantTerms := RelevantTerms(chunk.Content, glossary)
	prompt := e.prompt.Build(chunk.Content, relevantTerms)

	e.logger.Debug("translating chunk",
		zap.String("chunk", chunk.ID),
		zap.Int("estimated_tokens", EstimateTokens(chunk.Content)),
		zap.Int("relevant_terms", len(relevantTerms)))

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		resp, err := e.provider.Translate(ctx, &providers.ProviderRequest{
			Prompt:      prompt,
			MaxTokens:   e.maxTokens,
			Temperature: e.temperature,
		})
		if err == nil {
			translated := CleanResponse(resp.Text)
			return &TranslatedChunk{
				ID:         chunk.ID,
				Original:   chunk.Content,
				Translated: translated,
				TermsUsed:  LocateTerms(translated, relevantTerms),
				TokensUsed: resp.TokensIn + resp.TokensOut,
			}, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, &TranslationError{
				Code:    ErrCodeCanceled,
				Message: "translation canceled",
				ChunkID: chunk.ID,
				Cause:   err,
			}
		}

		if !providers.IsRateLimit(err) {
			break
		}

		if !e.pool.Rotate() {
			e.logger.Warn("rate limited but key pool exhausted",
				zap.String("chunk", chunk.ID),
				zap.Int("pool_size", e.pool.Len()))
			break
		}

		e.logger.Warn("rate limited, rotated to next API key",
			zap.String("chunk", chunk.ID),
			zap.Int("attempt", attempt))
	}

	return nil, &TranslationError{
		Code:    errCodeFor(lastErr),
		Message: fmt.Sprintf("translation failed after %d attempts", e.maxAttempts),
		ChunkID: chunk.ID,
		Cause:   lastErr,
	}
}

// errCodeFor 根据最后一次失败的类型选择错误代码
func errCodeFor(err error) string {
	if providers.IsRateLimit(err) {
		return ErrCodeRateLimit
	}
	return ErrCodeLLM
}
