package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Jobs       JobsConfig       `mapstructure:"jobs" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// APIKey, when set, is required as a Bearer token on every /api route
	// except health.
	APIKey      string   `mapstructure:"api_key"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite pgx"`
	URL    string `mapstructure:"url" validate:"required"`
}

// LLMConfig selects and tunes the text-completion backend.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" validate:"required,oneof=gemini openai huggingface anthropic stub"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"gte=0"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// GenerationConfig tunes the flashcard orchestrator.
type GenerationConfig struct {
	MaxChunkSize    int    `mapstructure:"max_chunk_size" validate:"gt=0"`
	Concurrency     int    `mapstructure:"concurrency" validate:"gte=1,lte=32"`
	DefaultCount    int    `mapstructure:"default_count" validate:"gte=1,lte=50"`
	MinTextLength   int    `mapstructure:"min_text_length" validate:"gte=1"`
	PromptDir       string `mapstructure:"prompt_dir"`
	ModelDifficulty bool   `mapstructure:"model_difficulty"`
}

// JobsConfig sizes the asynchronous generation worker pool.
type JobsConfig struct {
	Workers   int `mapstructure:"workers" validate:"gte=1"`
	QueueSize int `mapstructure:"queue_size" validate:"gte=1"`
}
