package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-glossary-translator/pkg/keypool"
	"github.com/nerdneilsfield/go-glossary-translator/pkg/providers"
)

// newMockServer 模拟OpenAI兼容的chat completions端点
func newMockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func completionJSON(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":    "cmpl-1",
		"model": "gemini-2.0-flash",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     12,
			"completion_tokens": 8,
			"total_tokens":      20,
		},
	}
}

func newTestProvider(endpoint string, keys ...string) (*Provider, *keypool.Pool) {
	pool := keypool.New(keys)
	cfg := DefaultConfig()
	cfg.APIEndpoint = endpoint
	return New(cfg, pool, zap.NewNop()), pool
}

func TestProviderTranslate(t *testing.T) {
	var authHeader atomic.Value
	server := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionJSON("额定负载为10吨。"))
	})

	provider, _ := newTestProvider(server.URL, "test-key")

	resp, err := provider.Translate(context.Background(), &providers.ProviderRequest{
		Prompt:      "translate this",
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "额定负载为10吨。", resp.Text)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 8, resp.TokensOut)

	// 当前密钥随请求发送
	assert.Equal(t, "Bearer test-key", authHeader.Load())
}

func TestProviderUsesRotatedKey(t *testing.T) {
	var lastAuth atomic.Value
	server := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionJSON("ok"))
	})

	provider, pool := newTestProvider(server.URL, "key-a", "key-b")

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-a", lastAuth.Load())

	// 池轮换后，后续调用自动使用新密钥
	require.True(t, pool.Rotate())
	_, err = provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-b", lastAuth.Load())
}

func TestProviderNoKey(t *testing.T) {
	provider, _ := newTestProvider("http://unused.invalid")

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
	require.Error(t, err)

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.CodeAuth, pe.Code)
}

func TestProviderRateLimitClassification(t *testing.T) {
	server := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded for this key", "type": "insufficient_quota"}}`))
	})

	provider, _ := newTestProvider(server.URL, "test-key")

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
	require.Error(t, err)

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.CodeRateLimit, pe.Code)
	assert.True(t, providers.IsRateLimit(err))
}

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"auth error", http.StatusUnauthorized, providers.CodeAuth},
		{"forbidden", http.StatusForbidden, providers.CodeAuth},
		{"bad request", http.StatusBadRequest, providers.CodeInvalidRequest},
		{"server error", http.StatusInternalServerError, providers.CodeServerError},
		{"bad gateway", http.StatusBadGateway, providers.CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "test_error"}}`))
			})

			provider, _ := newTestProvider(server.URL, "test-key")

			_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
			require.Error(t, err)

			var pe *providers.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.False(t, providers.IsRateLimit(err))
		})
	}
}

func TestProviderEmptyChoices(t *testing.T) {
	server := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cmpl-1", "model": "gemini-2.0-flash", "choices": []}`))
	})

	provider, _ := newTestProvider(server.URL, "test-key")

	_, err := provider.Translate(context.Background(), &providers.ProviderRequest{Prompt: "p"})
	require.Error(t, err)

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.CodeServerError, pe.Code)
}
