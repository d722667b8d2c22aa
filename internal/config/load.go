package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FLASHGEN_LLM_PROVIDER.
const EnvPrefix = "FLASHGEN"

// defaults are applied before the config file and environment.
var defaults = map[string]any{
	"server.port":                 8080,
	"server.log_level":            "info",
	"database.driver":             "sqlite",
	"database.url":                "file:flashgen.db",
	"llm.provider":                "stub",
	"llm.call_timeout":            60 * time.Second,
	"llm.max_retries":             0,
	"generation.max_chunk_size":   1000,
	"generation.concurrency":      1,
	"generation.default_count":    5,
	"generation.min_text_length":  50,
	"generation.model_difficulty": true,
	"jobs.workers":                2,
	"jobs.queue_size":             16,
}

// envKeys are bound explicitly so Unmarshal sees them even without a config file.
var envKeys = []string{
	"server.port",
	"server.log_level",
	"server.api_key",
	"server.cors_origins",
	"database.driver",
	"database.url",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"llm.call_timeout",
	"llm.max_retries",
	"generation.max_chunk_size",
	"generation.concurrency",
	"generation.default_count",
	"generation.min_text_length",
	"generation.prompt_dir",
	"generation.model_difficulty",
	"jobs.workers",
	"jobs.queue_size",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for an optional config.yaml.
func LoadFile(path string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
