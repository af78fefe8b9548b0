package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsRetryable(t *testing.T) {
	tests := []struct {
		code      string
		retryable bool
	}{
		{CodeRateLimit, true},
		{CodeTimeout, true},
		{CodeServerError, true},
		{CodeAuth, false},
		{CodeInvalidRequest, false},
		{CodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := NewError(tt.code, "message")
			assert.Equal(t, tt.retryable, err.IsRetryable())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapError(CodeServerError, "wrapped", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "server_error")
	assert.Contains(t, err.Error(), "wrapped")
}

func TestIsRateLimit(t *testing.T) {
	t.Run("structured code preferred", func(t *testing.T) {
		assert.True(t, IsRateLimit(NewError(CodeRateLimit, "anything")))
		assert.False(t, IsRateLimit(NewError(CodeServerError, "contains quota in text")))
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		err := fmt.Errorf("request failed: %w", NewError(CodeRateLimit, "slow down"))
		assert.True(t, IsRateLimit(err))
	})

	t.Run("string fallback", func(t *testing.T) {
		assert.True(t, IsRateLimit(errors.New("HTTP 429 Too Many Requests")))
		assert.True(t, IsRateLimit(errors.New("Rate limit exceeded")))
		assert.True(t, IsRateLimit(errors.New("daily quota exhausted")))
		assert.True(t, IsRateLimit(errors.New("RESOURCE EXHAUSTED")))
	})

	t.Run("negatives", func(t *testing.T) {
		assert.False(t, IsRateLimit(nil))
		assert.False(t, IsRateLimit(errors.New("connection refused")))
		assert.False(t, IsRateLimit(errors.New("failed to generate completion")))
	})
}
