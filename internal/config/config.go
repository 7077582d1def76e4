// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the sync binary needs to run.
type Config struct {
	// APIBaseURL is the single backend base URL; every resource path is
	// resolved against it.
	APIBaseURL string

	// RedisURL enables collection snapshots when set.
	RedisURL string

	// DatabaseURL enables durable session storage when set; without it the
	// session lives only for the process lifetime.
	DatabaseURL string

	// SyncInterval is how often the caches are refetched.
	SyncInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  os.Getenv("TRIPSYNC_API_URL"),
		RedisURL:    os.Getenv("TRIPSYNC_REDIS_URL"),
		DatabaseURL: os.Getenv("TRIPSYNC_DATABASE_URL"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("TRIPSYNC_API_URL environment variable is required")
	}

	interval := getEnvOrDefault("TRIPSYNC_SYNC_INTERVAL", "5m")
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("parsing TRIPSYNC_SYNC_INTERVAL %q: %w", interval, err)
	}
	cfg.SyncInterval = d

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
