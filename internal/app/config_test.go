package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jumph/jumph/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "c")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfigReadsDotenv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("WORKER_METRICS_ADDR", "")
	require.NoError(t, os.Unsetenv("WORKER_METRICS_ADDR"))
	t.Setenv("APP_ENV", "production")

	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("WORKER_METRICS_ADDR=:9999\nAPP_ENV=staging\n"), 0o600))

	cfg, err := LoadConfig(dotenv)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.WorkerMetricsAddr)
	assert.True(t, cfg.IsProduction(), "variables already set win over the dotenv file")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", logLevel(&Config{LogLevel: "Debug"}).String())
	assert.Equal(t, "INFO", logLevel(&Config{LogLevel: "chatty"}).String())
	assert.Equal(t, "INFO", logLevel(nil).String())
}

func TestInTestMode(t *testing.T) {
	assert.True(t, InTestMode())
}
