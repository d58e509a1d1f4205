// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the client reads from the environment.
type Config struct {
	// Storage selects the blob backend: file, redis or postgres.
	Storage     string `env:"SC_STORAGE" envDefault:"file"`
	DataDir     string `env:"SC_DATA_DIR"`
	RedisURL    string `env:"SC_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PostgresDSN string `env:"SC_POSTGRES_DSN"`

	// TokenKey signs local session tokens; TokenTTL bounds session restore.
	TokenKey string        `env:"SC_TOKEN_KEY" envDefault:"storycircle-dev"`
	TokenTTL time.Duration `env:"SC_TOKEN_TTL" envDefault:"720h"`

	// Extraction service (OpenAI-compatible chat completions). Empty endpoint
	// or key degrades extraction to placeholder output.
	AIEndpoint string `env:"SC_AI_ENDPOINT"`
	AIKey      string `env:"SC_AI_KEY"`
	AIModel    string `env:"SC_AI_MODEL" envDefault:"gpt-4o-mini"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// defaultDataDir resolves the per-user data directory for the file backend.
func defaultDataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "storycircle")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "storycircle")
}
