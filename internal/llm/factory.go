package llm

import (
	"context"
	"fmt"
	"net/http"

	"quizgen/internal/config"
	"quizgen/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewProvider creates the configured backend wrapped with timeout, tracing and logging.
func NewProvider(ctx context.Context, cfg config.AIConfig, logger *observability.Logger) (Provider, error) {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.RequestTimeout,
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case config.ProviderOpenRouter:
		base, err = NewOpenRouterProvider(OpenRouterConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Referer:    cfg.Referer,
			Title:      cfg.Title,
			HTTPClient: httpClient,
		})
	case config.ProviderOpenAI:
		base, err = NewOpenAIProvider(OpenAIConfig{
			Name:       "openai",
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
	case config.ProviderGemini:
		base, err = NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
	case config.ProviderAnthropic:
		base, err = NewAnthropicProvider(AnthropicConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
	case config.ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithInstrumentation(base, cfg.RequestTimeout, logger), nil
}
