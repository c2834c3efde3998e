package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config aggregates runtime configuration for the application.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Roster   RosterConfig
}

// AppConfig identifies the running build.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	Driver       string `validate:"oneof=sqlite postgres mysql"`
	DSN          string `validate:"required"`
	MaxOpenConns int    `validate:"gte=0"`
}

// RedisConfig holds the optional trend cache connection. An empty Addr or a
// zero TTL disables caching.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int `validate:"gte=0"`
	TrendTTLSeconds int `validate:"gte=0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
}

// RosterConfig points at an optional YAML roster replacing the built-in one.
type RosterConfig struct {
	File string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STAFFDESK_DB_DRIVER", DriverSQLite))
	dsn := os.Getenv("STAFFDESK_DB_DSN")
	if dsn == "" && driver == DriverSQLite {
		dsn = "staff_management.db"
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "staffdesk"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Database: DatabaseConfig{
			Driver:       driver,
			DSN:          dsn,
			MaxOpenConns: getEnvAsInt("STAFFDESK_DB_MAX_OPEN_CONNS", 1),
		},
		Redis: RedisConfig{
			Addr:            os.Getenv("REDIS_ADDR"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			TrendTTLSeconds: getEnvAsInt("TREND_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
		Roster: RosterConfig{
			File: os.Getenv("STAFFDESK_ROSTER_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TrendTTL returns how long cached trend results stay fresh.
func (r RedisConfig) TrendTTL() time.Duration {
	if r.TrendTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.TrendTTLSeconds) * time.Second
}

// Enabled reports whether the trend cache should be used: an address is
// configured and entries expire. A zero TTL would keep date-relative trends
// forever, so it disables the cache.
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" && r.TrendTTLSeconds > 0
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
