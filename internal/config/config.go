// Package config loads service configuration from KIDWALLET_-prefixed
// environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"kidwallet.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Award endpoint rate limit: requests per minute per client IP.
	// Awards are writes; everything else is read-only and unlimited.
	AwardRateLimit int `envconfig:"AWARD_RATE_LIMIT" default:"60"`
}

// Load reads the environment. Missing variables fall back to defaults;
// malformed values are an error, not a silent default.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("kidwallet", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.AwardRateLimit < 1 {
		return Config{}, fmt.Errorf("award rate limit must be >= 1, got %d", cfg.AwardRateLimit)
	}
	return cfg, nil
}
