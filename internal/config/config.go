package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BackendMode selects between the deterministic demo model and live providers.
	BackendMode string `mapstructure:"backend_mode" validate:"required,oneof=demo live"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Primary   string `mapstructure:"primary" validate:"required,oneof=gemini openai anthropic demo"`
	Secondary string `mapstructure:"secondary" validate:"omitempty,oneof=gemini openai anthropic demo"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	AnthropicModel   string `mapstructure:"anthropic_model"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url" validate:"omitempty,url"`

	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxTokens      int `mapstructure:"max_tokens" validate:"gt=0"`
}

// Timeout returns the per-call provider timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// APIKey returns the key configured for the named provider.
func (l LLMConfig) APIKey(provider string) string {
	switch provider {
	case "gemini":
		return l.GeminiAPIKey
	case "openai":
		return l.OpenAIAPIKey
	case "anthropic":
		return l.AnthropicAPIKey
	default:
		return ""
	}
}

// TaskConfig tunes the background generation worker pool.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gt=0"`
	StaleClaimMinutes   int `mapstructure:"stale_claim_minutes" validate:"gt=0"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Exporter     string `mapstructure:"exporter" validate:"omitempty,oneof=stdout otlp"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}
