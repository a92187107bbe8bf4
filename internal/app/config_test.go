package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("API_BASE_URL", "https://api.odyssey.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 20*time.Second, cfg.APITimeout)
	require.Equal(t, "hr", cfg.DefaultSubdomain)
	require.Equal(t, 120, cfg.RateLimitPerMinute)
	require.Equal(t, int32(10), cfg.PGMaxConns)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresAPIBaseURL(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("API_BASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigValidatesValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("API_BASE_URL", "not a url")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "CSRFSecret (required)")
	require.Contains(t, err.Error(), "APIBaseURL (http_url)")
	require.Contains(t, err.Error(), "LogFormat (oneof)")
}

func TestConfigRedisOptions(t *testing.T) {
	cfg := &Config{RedisAddr: "redis:6379", RedisPassword: "pw", RedisDB: 1}
	opts := cfg.Redis()
	require.Equal(t, "redis:6379", opts.Addr)
	require.Equal(t, 1, opts.Asynq().DB)
}
