package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestError_WrapsCause tests unwrapping and the message format.
func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError("complete", cause, true)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "llm complete: connection refused", err.Error())
}

// TestIsRetryable tests retryability classification.
func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError("complete", errors.New("x"), true)))
	assert.False(t, IsRetryable(NewError("complete", errors.New("x"), false)))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

// TestRetryableMessage tests transient-failure detection by message text.
func TestRetryableMessage(t *testing.T) {
	testCases := []struct {
		msg  string
		want bool
	}{
		{"Rate limit exceeded, retry after 20s", true},
		{"request timeout", true},
		{"the model is overloaded", true},
		{"HTTP 503 Service Unavailable", true},
		{"upstream returned 529", true},
		{"invalid api key", false},
		{"model not found", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.msg, func(t *testing.T) {
			assert.Equal(t, tc.want, retryableMessage(tc.msg))
		})
	}
}

// TestTokenUsage_Add tests usage accumulation.
func TestTokenUsage_Add(t *testing.T) {
	var total TokenUsage
	total.Add(TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(TokenUsage{InputTokens: 20, OutputTokens: 8, TotalTokens: 28})

	assert.Equal(t, TokenUsage{InputTokens: 30, OutputTokens: 13, TotalTokens: 43}, total)
}
