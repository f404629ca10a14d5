// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the proposal cache when the environment does not set them.
const (
	DefaultProposalCacheSize = 512
	DefaultProposalCacheTTL  = 24 * time.Hour
)

// minHashSaltLength is the shortest accepted LOG_HASH_SALT; hashed
// identifiers must not be reproducible from a guessable salt.
const minHashSaltLength = 32

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken  string
	DatabaseURL       string
	GeminiAPIKey      string
	LogLevel          string
	LogJSON           bool
	LogHashSalt       string
	ProposalCacheSize int
	ProposalCacheTTL  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogHashSalt:      os.Getenv("LOG_HASH_SALT"),
	}

	cfg.LogJSON = os.Getenv("LOG_JSON") == "true"

	cfg.ProposalCacheSize = DefaultProposalCacheSize
	if sizeStr := os.Getenv("PROPOSAL_CACHE_SIZE"); sizeStr != "" {
		if n, err := strconv.Atoi(sizeStr); err == nil && n > 0 {
			cfg.ProposalCacheSize = n
		}
	}

	cfg.ProposalCacheTTL = DefaultProposalCacheTTL
	if ttlStr := os.Getenv("PROPOSAL_CACHE_TTL"); ttlStr != "" {
		if d, err := time.ParseDuration(ttlStr); err == nil && d > 0 {
			cfg.ProposalCacheTTL = d
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.LogHashSalt == "" {
		errs = append(errs, "LOG_HASH_SALT is required")
	} else if len(c.LogHashSalt) < minHashSaltLength {
		errs = append(errs, fmt.Sprintf("LOG_HASH_SALT must be at least %d characters", minHashSaltLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
