// Package gemini 通过Gemini的OpenAI兼容端点执行翻译调用
package gemini

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-glossary-translator/pkg/keypool"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/providers"
)

// DefaultEndpoint Gemini的OpenAI兼容端点
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai"

// Config Gemini配置
type Config struct {
	providers.BaseConfig

	// Model 使用的模型
	Model string `json:"model"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig: providers.DefaultConfig(),
		Model:      "gemini-2.0-flash",
	}
}

// Provider Gemini翻译提供商
//
// 每次调用都从密钥池读取当前密钥，池被其他请求轮换后，
// 后续调用自动使用新密钥
type Provider struct {
	config Config
	pool   *keypool.Pool
	logger *zap.Logger
}

// New 创建Gemini提供商
func New(config Config, pool *keypool.Pool, logger *zap.Logger) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		config: config,
		pool:   pool,
		logger: logger,
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "gemini"
}

// Translate 执行一次翻译调用
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	key, ok := p.pool.Current()
	if !ok {
		return nil, providers.NewError(providers.CodeAuth, "no API key available")
	}

	clientConfig := openai.DefaultConfig(key)
	clientConfig.BaseURL = p.config.APIEndpoint
	client := openai.NewClientWithConfig(clientConfig)

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		classified := classifyError(err)
		p.logger.Debug("gemini request failed",
			zap.String("model", p.config.Model),
			zap.Error(classified))
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.CodeServerError, "empty response from model")
	}

	return &providers.ProviderResponse{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// classifyError 将底层错误映射到结构化的提供商错误代码
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providers.WrapError(codeForStatus(apiErr.HTTPStatusCode), apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return providers.WrapError(codeForStatus(reqErr.HTTPStatusCode), reqErr.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return providers.WrapError(providers.CodeTimeout, "request timed out", err)
	}

	// 状态码已丢失，退回到文本检查
	if providers.IsRateLimit(err) {
		return providers.WrapError(providers.CodeRateLimit, err.Error(), err)
	}

	return providers.WrapError(providers.CodeUnknown, err.Error(), err)
}

// codeForStatus 将HTTP状态码映射到错误代码
func codeForStatus(status int) string {
	switch {
	case status == 429:
		return providers.CodeRateLimit
	case status == 401 || status == 403:
		return providers.CodeAuth
	case status >= 500:
		return providers.CodeServerError
	case status >= 400:
		return providers.CodeInvalidRequest
	default:
		return providers.CodeUnknown
	}
}
