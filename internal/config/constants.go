package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout = 60 * time.Second
	AIRequestTimeout   = 60 * time.Second
	ShutdownTimeout    = 30 * time.Second

	// Server timeouts
	ReadHeaderTimeout = 10 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Redis timeouts
	RedisDialTimeout = 5 * time.Second
)

// Provider defaults
const (
	DefaultPort              = "5000"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-3.5-turbo"
	DefaultModelMaxTokens    = 16000
)

// Generation constants
const (
	DefaultMaxGenerationAttempts = 3
	DefaultNumQuestions          = 10
	MinNumQuestions              = 1
	MaxNumQuestions              = 100

	// Token budget per generation call: base plus a per-question allowance
	GenerationBaseTokens        = 256
	GenerationTokensPerQuestion = 200
	GenerationTemperature       = 0.2

	ExplanationMaxTokens   = 500
	ExplanationTemperature = 0.5

	// Repair calls reuse the generation budget at this temperature
	RepairTemperature = 0.1
)

// GenerationMaxTokens is the completion budget for n questions, capped at limit when limit > 0
func GenerationMaxTokens(n, limit int) int {
	tokens := GenerationBaseTokens + GenerationTokensPerQuestion*n
	if limit > 0 && tokens > limit {
		return limit
	}
	return tokens
}

// Progress constants
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	TopTopicsLimit      = 5
)

// Security configuration constants
const (
	// Content Security Policy for the JSON API
	DefaultCSP = "default-src 'none'; frame-ancestors 'none';"
)
