// Package config loads application configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"dynamic-price-optimizer/internal/apperr"
)

// Config holds all application configuration.
type Config struct {
	PostgresDSN   string // POSTGRES_DSN
	ClickhouseDSN string // CLICKHOUSE_DSN

	LogLevel string // LOG_LEVEL, zerolog level name
	ModelDir string // MODEL_DIR, where training writes the artifact

	ScrapeDelaySeconds    int // SCRAPE_DELAY, fixed delay between requests
	ScrapeTimeoutSeconds  int // SCRAPE_TIMEOUT, per-request timeout
	ScrapeMaxRetrySeconds int // SCRAPE_MAX_RETRY, total backoff budget per URL

	MetricsAddr string // METRICS_ADDR, empty disables the /metrics endpoint
}

// Load initializes configuration from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	return &Config{
		PostgresDSN:           os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:         os.Getenv("CLICKHOUSE_DSN"),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
		ModelDir:              getEnvWithDefault("MODEL_DIR", "model"),
		ScrapeDelaySeconds:    getEnvIntWithDefault("SCRAPE_DELAY", 2),
		ScrapeTimeoutSeconds:  getEnvIntWithDefault("SCRAPE_TIMEOUT", 10),
		ScrapeMaxRetrySeconds: getEnvIntWithDefault("SCRAPE_MAX_RETRY", 30),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
	}
}

// RequireDatabases checks that both DSNs are set. Commands that only work on
// CSV files and the local artifact do not call this.
func (c *Config) RequireDatabases() error {
	if c.PostgresDSN == "" {
		return &apperr.ConfigError{Key: "POSTGRES_DSN", Reason: "must be set"}
	}
	if c.ClickhouseDSN == "" {
		return &apperr.ConfigError{Key: "CLICKHOUSE_DSN", Reason: "must be set"}
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
