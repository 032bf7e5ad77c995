package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dynamic-price-optimizer/internal/apperr"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SCRAPE_DELAY", "")

	cfg := Load()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "model", cfg.ModelDir)
	assert.Equal(t, 2, cfg.ScrapeDelaySeconds)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://test")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://test/db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCRAPE_DELAY", "5")

	cfg := Load()
	assert.Equal(t, "postgres://test", cfg.PostgresDSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.ScrapeDelaySeconds)
	assert.NoError(t, cfg.RequireDatabases())
}

func TestRequireDatabases(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("CLICKHOUSE_DSN", "")

	cfg := Load()
	err := cfg.RequireDatabases()

	var cfgErr *apperr.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "POSTGRES_DSN", cfgErr.Key)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("SCRAPE_TIMEOUT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 10, cfg.ScrapeTimeoutSeconds)
}
