// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"BACKEND_URL", "BACKEND_SHARED_SECRET", "BACKEND_TIMEOUT_SECONDS",
		"SERVER_HOST", "SERVER_PORT", "ALLOWED_ORIGIN", "JOURNAL_DB_PATH",
		"LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Empty(t, cfg.BackendURL)
	assert.Empty(t, cfg.SharedSecret)
	assert.Equal(t, 15*time.Second, cfg.CallTimeout)
	assert.Equal(t, "127.0.0.1:5050", cfg.ListenAddr())
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://script.example/exec")
	t.Setenv("BACKEND_SHARED_SECRET", "s3cret")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "30")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("ALLOWED_ORIGIN", "https://shop.example")
	t.Setenv("JOURNAL_DB_PATH", "/tmp/journal.db")

	cfg := FromEnv()

	assert.Equal(t, "https://script.example/exec", cfg.BackendURL)
	assert.Equal(t, "s3cret", cfg.SharedSecret)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
	assert.Equal(t, "https://shop.example", cfg.AllowedOrigin)
	assert.Equal(t, "/tmp/journal.db", cfg.JournalDBPath)
}

func TestFromEnvInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "not-a-number")
	assert.Equal(t, 15*time.Second, FromEnv().CallTimeout)

	t.Setenv("BACKEND_TIMEOUT_SECONDS", "-5")
	assert.Equal(t, 15*time.Second, FromEnv().CallTimeout)
}
