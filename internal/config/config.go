package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the interview assistant service.
// Environment variables are parsed from the INTERVIEW_ASSISTANT_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store selects the vector store backend: memory or redis
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Embedding Configuration
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"openai"`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"text-embedding-3-small"`

	// Chat / generation Configuration
	ChatProvider string  `envconfig:"CHAT_PROVIDER" default:"openai"`
	ChatModel    string  `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	Temperature  float64 `envconfig:"CHAT_TEMPERATURE" default:"0.8"`

	// Provider endpoints and credentials
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OllamaURL     string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	// Uniqueness loop tuning
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.8"`
	MaxAttempts         int     `envconfig:"MAX_ATTEMPTS" default:"5"`
	ExpirationSeconds   int     `envconfig:"EXPIRATION_SECONDS" default:"86400"`

	// Embedding cache capacity (entries)
	EmbedCacheSize int `envconfig:"EMBED_CACHE_SIZE" default:"128"`

	// Health checking cadence
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	// Startup warmup budget for providers and store bootstrap
	BootstrapTimeoutSeconds int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`
}

// ResolveDefaults validates driver/provider selections and tuning values.
func (c *Config) ResolveDefaults() error {
	allowedStore := map[string]bool{"memory": true, "redis": true}
	if !allowedStore[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	allowedProvider := map[string]bool{"openai": true, "ollama": true}
	if !allowedProvider[c.EmbedProvider] {
		return fmt.Errorf("unsupported EMBED_PROVIDER: %s", c.EmbedProvider)
	}
	if !allowedProvider[c.ChatProvider] {
		return fmt.Errorf("unsupported CHAT_PROVIDER: %s", c.ChatProvider)
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [0,1], got %v", c.SimilarityThreshold)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.ExpirationSeconds < 0 {
		return fmt.Errorf("EXPIRATION_SECONDS must not be negative, got %d", c.ExpirationSeconds)
	}
	if c.EmbedCacheSize < 1 {
		return fmt.Errorf("EMBED_CACHE_SIZE must be at least 1, got %d", c.EmbedCacheSize)
	}
	if c.HealthIntervalSeconds < 1 {
		return fmt.Errorf("HEALTH_INTERVAL_SECONDS must be at least 1, got %d", c.HealthIntervalSeconds)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with INTERVIEW_ASSISTANT_
// Example: INTERVIEW_ASSISTANT_HTTP_PORT, INTERVIEW_ASSISTANT_MAX_ATTEMPTS
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("INTERVIEW_ASSISTANT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("chat_provider", cfg.ChatProvider).
		Str("chat_model", cfg.ChatModel).
		Float64("similarity_threshold", cfg.SimilarityThreshold).
		Int("max_attempts", cfg.MaxAttempts).
		Int("expiration_seconds", cfg.ExpirationSeconds).
		Int("port", cfg.HTTPPort).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config with defaults suitable for unit tests.
func NewForTesting() *Config {
	return &Config{
		HTTPPort:            8080,
		StoreDriver:         "memory",
		EmbedProvider:       "openai",
		EmbedModel:          "text-embedding-3-small",
		ChatProvider:        "openai",
		ChatModel:           "gpt-4o-mini",
		Temperature:         0.8,
		SimilarityThreshold: 0.8,
		MaxAttempts:         5,
		ExpirationSeconds:   86400,
		EmbedCacheSize:      128,

		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
		BootstrapTimeoutSeconds:   30,
	}
}

// ItemTTL returns the configured item expiration as a duration.
func (c *Config) ItemTTL() time.Duration {
	return time.Duration(c.ExpirationSeconds) * time.Second
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
