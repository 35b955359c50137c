package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Addr            string
	LogLevel        string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	DbConfig        DbConfig
	RedisConfig     RedisConfig
}

// DbConfig holds the per-request database limits. Credentials are never
// configured here; every request brings its own.
type DbConfig struct {
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration
}

// RedisConfig configures the execution event publisher. An empty Addr
// disables publishing.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment only")
	}

	return &Config{
		Addr:            getString("ADDR", ":3000"),
		LogLevel:        getString("LOG_LEVEL", "info"),
		MaxBodyBytes:    int64(getInt("MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout: getMillis("SHUTDOWN_TIMEOUT_MS", 10*time.Second),
		DbConfig: DbConfig{
			ConnectTimeout:   getMillis("DB_CONNECT_TIMEOUT_MS", 15*time.Second),
			StatementTimeout: getMillis("DB_STATEMENT_TIMEOUT_MS", 15*time.Second),
		},
		RedisConfig: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			Channel:  getString("REDIS_CHANNEL", "query-proxy:executions"),
			Timeout:  getMillis("REDIS_TIMEOUT_MS", 500*time.Millisecond),
		},
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("Invalid %s value: %q. Using default %d.", key, raw, def)
		return def
	}
	return v
}

// getMillis reads a millisecond duration. Zero is kept and means "no limit".
func getMillis(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("Invalid %s value: %q. Using default %s.", key, raw, def)
		return def
	}
	return time.Duration(v) * time.Millisecond
}
