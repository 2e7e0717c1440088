package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"METASTATS_BASE_URL", "ARCHETYPE_BOUND", "PUBLISH_PATH", "FETCH_MODE",
		"MAX_RETRIES", "RATE_LIMIT_MS", "SNAPSHOT_TO_POSTGRES", "DEBUG",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "http://metastats.net", cfg.BaseURL)
	assert.Equal(t, 9, cfg.Bound)
	assert.Equal(t, "decks.txt", cfg.PublishPath)
	assert.Equal(t, FetchModeHTTP, cfg.FetchMode)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 0, cfg.RateLimitMs)
	assert.False(t, cfg.SnapshotToPostgres)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("METASTATS_BASE_URL", "http://localhost:8080")
	t.Setenv("ARCHETYPE_BOUND", "3")
	t.Setenv("FETCH_MODE", "Browser")
	t.Setenv("SNAPSHOT_TO_POSTGRES", "true")
	t.Setenv("RATE_LIMIT_MS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 3, cfg.Bound)
	assert.Equal(t, FetchModeBrowser, cfg.FetchMode)
	assert.True(t, cfg.SnapshotToPostgres)
	assert.Equal(t, 0, cfg.RateLimitMs)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "meta", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=meta sslmode=disable", cfg.DSN())
}
