package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "selection:session:", cfg.Session.KeyPrefix)
	assert.Equal(t, 0, cfg.Session.TTLHours)
	assert.Equal(t, int64(10485760), cfg.Import.MaxUploadBytes)
	assert.Equal(t, 30, cfg.Import.FetchTimeoutSeconds)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("IMPORT_FETCH_TIMEOUT_SECONDS", "bogus")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 48, cfg.Session.TTLHours)
	assert.Equal(t, int64(1024), cfg.Import.MaxUploadBytes)
	// Unparseable numbers fall back to the default.
	assert.Equal(t, 30, cfg.Import.FetchTimeoutSeconds)
}
