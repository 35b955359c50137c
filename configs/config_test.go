package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "LOG_LEVEL", "MAX_BODY_BYTES", "SHUTDOWN_TIMEOUT_MS",
		"DB_CONNECT_TIMEOUT_MS", "DB_STATEMENT_TIMEOUT_MS",
		"REDIS_ADDR", "REDIS_DB", "REDIS_CHANNEL", "REDIS_TIMEOUT_MS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 15*time.Second, cfg.DbConfig.ConnectTimeout)
	require.Equal(t, 15*time.Second, cfg.DbConfig.StatementTimeout)
	require.Empty(t, cfg.RedisConfig.Addr)
	require.Equal(t, "query-proxy:executions", cfg.RedisConfig.Channel)
	require.Equal(t, 500*time.Millisecond, cfg.RedisConfig.Timeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ADDR", "127.0.0.1:8081")
	t.Setenv("DB_CONNECT_TIMEOUT_MS", "2500")
	t.Setenv("DB_STATEMENT_TIMEOUT_MS", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()
	require.Equal(t, "127.0.0.1:8081", cfg.Addr)
	require.Equal(t, 2500*time.Millisecond, cfg.DbConfig.ConnectTimeout)
	require.Zero(t, cfg.DbConfig.StatementTimeout)
	require.Equal(t, "localhost:6379", cfg.RedisConfig.Addr)
	require.Equal(t, 3, cfg.RedisConfig.DB)
}

func TestLoadConfigInvalidFallsBack(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "lots")
	t.Setenv("DB_CONNECT_TIMEOUT_MS", "-5")

	cfg := LoadConfig()
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 15*time.Second, cfg.DbConfig.ConnectTimeout)
}
