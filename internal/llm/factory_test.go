package llm

import (
	"context"
	"testing"
	"time"

	"quizgen/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		model   string
		wantErr string
	}{
		{
			name:  "openrouter",
			cfg:   config.AIConfig{Provider: config.ProviderOpenRouter, APIKey: "k", Model: "openai/gpt-3.5-turbo"},
			model: "openai/gpt-3.5-turbo",
		},
		{
			name:  "openai",
			cfg:   config.AIConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
			model: "gpt-4o-mini",
		},
		{
			name:  "anthropic",
			cfg:   config.AIConfig{Provider: config.ProviderAnthropic, APIKey: "k", Model: "claude-sonnet"},
			model: "claude-sonnet-4-20250514",
		},
		{
			name:  "mock",
			cfg:   config.AIConfig{Provider: config.ProviderMock},
			model: "mock",
		},
		{
			name:    "missing key",
			cfg:     config.AIConfig{Provider: config.ProviderOpenRouter},
			wantErr: "API key is required",
		},
		{
			name:    "unknown",
			cfg:     config.AIConfig{Provider: "cohere"},
			wantErr: "unknown LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.RequestTimeout = time.Second
			p, err := NewProvider(context.Background(), tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, p.ModelID())
		})
	}
}
