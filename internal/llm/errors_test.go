package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	contextutils "quizgen/internal/utils"
)

func TestIsInsufficientCredits(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 402", &ProviderError{Provider: "openrouter", StatusCode: 402, Err: errors.New("nope")}, true},
		{"wrapped 402", fmt.Errorf("attempt 1: %w", &ProviderError{StatusCode: 402, Err: errors.New("x")}), true},
		{"message credits", &ProviderError{Provider: "openrouter", StatusCode: 400, Err: errors.New("Insufficient credits on account")}, true},
		{"message quota", &ProviderError{Provider: "openai", StatusCode: 429, Err: errors.New("You exceeded your current quota: insufficient quota")}, true},
		{"message payment", fmt.Errorf("attempt 2: %w", &ProviderError{Provider: "openai", Err: errors.New("Payment Required")}), true},
		{"plain error with credits message", errors.New("Insufficient credits on account"), false},
		{"model output quoting payment required", contextutils.NewWithDetails(contextutils.ErrInvalidQuizFormat, fmt.Sprintf("question 0: correctAnswer %q is not one of its options", "Payment Required"), nil), false},
		{"status 500", &ProviderError{StatusCode: 500, Err: errors.New("server exploded")}, false},
		{"unrelated", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInsufficientCredits(tt.err))
		})
	}
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{Provider: "gemini", StatusCode: 503, Err: errors.New("overloaded")}
	assert.Equal(t, "gemini request failed with status 503: overloaded", err.Error())

	err = &ProviderError{Provider: "gemini", Err: errors.New("dial tcp")}
	assert.Equal(t, "gemini request failed: dial tcp", err.Error())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, RateLimitMessage, Describe(&ProviderError{StatusCode: 429, Err: errors.New("x")}))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
