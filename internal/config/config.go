package config

import (
	"os"
	"strconv"
)

// Config holds the houseselect HTTP API configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Session struct {
		KeyPrefix string
		TTLHours  int // 0 = persist without expiry
	}
	Import struct {
		MaxUploadBytes      int64
		FetchTimeoutSeconds int
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true: if Redis is unavailable the service falls back to
	// in-memory sessions instead of failing to start.
	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.KeyPrefix = getEnv("SESSION_KEY_PREFIX", "selection:session:")
	cfg.Session.TTLHours = parseInt(getEnv("SESSION_TTL_HOURS", "0"), 0)

	cfg.Import.MaxUploadBytes = int64(parseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10485760))
	cfg.Import.FetchTimeoutSeconds = parseInt(getEnv("IMPORT_FETCH_TIMEOUT_SECONDS", "30"), 30)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
