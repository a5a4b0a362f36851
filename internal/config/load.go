package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYROOMS"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, "")
}

func load(v *viper.Viper, searchDir string) (*Config, error) {
	cfg, err := read(v, searchDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read resolves defaults, the optional config file at path and the
// environment without validating the result. Tools that need only part of
// the configuration validate that part themselves.
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		return read(v, ".")
	}
	v.SetConfigFile(path)
	return read(v, "")
}

func read(v *viper.Viper, searchDir string) (*Config, error) {
	setDefaults(v)

	if searchDir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(searchDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || searchDir == "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.validateProviders(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ValidateSection checks a single section such as AuthConfig or LLMConfig.
func ValidateSection(section any) error {
	if err := validator.New().Struct(section); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.backend_mode", "demo")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.primary", "gemini")
	v.SetDefault("llm.secondary", "openai")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.anthropic_model", "claude-haiku-4-5")
	v.SetDefault("llm.anthropic_base_url", "")
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.max_tokens", 8192)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("task.stale_claim_minutes", 10)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "studyrooms-api")
}

// validateProviders checks the cross-field rules the struct tags cannot express.
// Live mode needs an API key for every configured remote provider.
func (c *Config) validateProviders() error {
	if c.Server.BackendMode != "live" {
		return nil
	}
	for _, p := range []string{c.LLM.Primary, c.LLM.Secondary} {
		if p == "" || p == "demo" {
			continue
		}
		if c.LLM.APIKey(p) == "" {
			return fmt.Errorf("llm provider %s requires %s_LLM_%s_API_KEY in live mode",
				p, EnvPrefix, strings.ToUpper(p))
		}
	}
	if c.LLM.Secondary != "" && c.LLM.Secondary == c.LLM.Primary {
		return fmt.Errorf("llm secondary provider must differ from primary %q", c.LLM.Primary)
	}
	return nil
}
