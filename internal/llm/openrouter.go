package llm

import "net/http"

// DefaultOpenRouterBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig configures the OpenRouter backend.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Referer and Title populate the HTTP-Referer and X-Title attribution headers.
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// OpenRouter exposes an OpenAI-compatible API, so the OpenAI SDK is reused.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}

	return NewOpenAIProvider(OpenAIConfig{
		Name:    "openrouter",
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
		Headers: map[string]string{
			"HTTP-Referer": cfg.Referer,
			"X-Title":      cfg.Title,
		},
		HTTPClient:      cfg.HTTPClient,
		LegacyMaxTokens: true,
	})
}
