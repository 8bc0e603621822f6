// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "quizgen/internal/utils"

	"gopkg.in/yaml.v3"
)

// Provider identifiers accepted in ai.provider
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderMock       = "mock"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`

	AI AIConfig `json:"ai" yaml:"ai"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	Redis RedisConfig `json:"redis" yaml:"redis"`

	Database DatabaseConfig `json:"database" yaml:"database"`

	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port"`
	Debug       bool     `json:"debug" yaml:"debug"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// AIConfig selects the LLM provider and the parameters used for every call
type AIConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	Model    string `json:"model" yaml:"model"`
	// MaxTokens caps the completion budget of a single call
	MaxTokens      int           `json:"max_tokens" yaml:"max_tokens"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxAttempts    int           `json:"max_attempts" yaml:"max_attempts"`
	// Referer and Title are sent as OpenRouter attribution headers
	Referer string `json:"referer" yaml:"referer"`
	Title   string `json:"title" yaml:"title"`
}

// AuthConfig holds the shared secret used to verify bearer tokens
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`
}

// Enabled reports whether bearer token identity is configured
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// RedisConfig configures the subscription counter store. An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "quizgen-backend"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"` // Use the auto instrumentation SDK instead of OTLP export
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
}

// DatabaseConfig configures the progress store. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderMock:
	default:
		return contextutils.WrapErrorf(contextutils.ErrAIConfigInvalid, "unknown ai.provider %q", c.AI.Provider)
	}
	if c.AI.MaxAttempts < 1 {
		return contextutils.WrapErrorf(contextutils.ErrAIConfigInvalid, "ai.max_attempts must be at least 1, got %d", c.AI.MaxAttempts)
	}
	return nil
}

// applyDefaults fills zero values with the defaults documented on each field
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}

	if c.AI.Provider == "" {
		c.AI.Provider = ProviderOpenRouter
	}
	if c.AI.BaseURL == "" && c.AI.Provider == ProviderOpenRouter {
		c.AI.BaseURL = DefaultOpenRouterBaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = defaultModelFor(c.AI.Provider)
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = DefaultModelMaxTokens
	}
	if c.AI.RequestTimeout <= 0 {
		c.AI.RequestTimeout = AIRequestTimeout
	}
	if c.AI.MaxAttempts == 0 {
		c.AI.MaxAttempts = DefaultMaxGenerationAttempts
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DatabaseConnMaxLifetime
	}

	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = "quizgen-backend"
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

func defaultModelFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return DefaultOpenRouterModel
	}
}

// envAliases maps conventional deployment variables onto their config paths
var envAliases = map[string]string{
	"PORT":               "SERVER_PORT",
	"OPENROUTER_API_KEY": "AI_API_KEY",
	"QUIZ_MODEL":         "AI_MODEL",
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	for alias, target := range envAliases {
		if v := os.Getenv(alias); v != "" && os.Getenv(target) == "" {
			applyEnvValue(c, target, v)
		}
	}
	overrideStructFromEnvWithPrefix(c, "", os.Getenv)
}

// applyEnvValue sets the single field addressed by envKey
func applyEnvValue(c *Config, envKey, value string) {
	overrideStructFromEnvWithPrefix(c, "", func(key string) string {
		if key == envKey {
			return value
		}
		return ""
	})
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with values returned by lookup
func overrideStructFromEnvWithPrefix(v interface{}, prefix string, lookup func(string) string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		if field.Kind() == reflect.Struct {
			overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey, lookup)
			continue
		}

		envVal := lookup(envKey)
		if envVal == "" {
			continue
		}

		switch {
		case field.Type() == durationType:
			if d, err := time.ParseDuration(envVal); err == nil {
				field.SetInt(int64(d))
			}
		case field.Kind() == reflect.String:
			field.SetString(envVal)
		case field.Kind() >= reflect.Int && field.Kind() <= reflect.Int64:
			if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
				field.SetInt(intVal)
			}
		case field.Kind() == reflect.Float32 || field.Kind() == reflect.Float64:
			if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
				field.SetFloat(floatVal)
			}
		case field.Kind() == reflect.Bool:
			if boolVal, err := strconv.ParseBool(envVal); err == nil {
				field.SetBool(boolVal)
			}
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			parts := strings.Split(envVal, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}

// loadConfigWithOverrides loads the file named by QUIZGEN_CONFIG_FILE, or config.yaml when present
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv("QUIZGEN_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
