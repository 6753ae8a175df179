// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
)

// Config holds configuration knobs for the HTTP server, storage and cart.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBTimeout         time.Duration

	RedisAddr string
	RedisTTL  time.Duration

	CartReconcileUpdates bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// loadEnvFile reads ENV_FILE (default .env) into the environment. Variables
// already set are not overridden and a missing file is not an error. A file
// that fails to parse is logged and skipped.
func loadEnvFile() {
	path := getenv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		obs.Logger.Warn("env_file_error", "path", path, "error", err)
	}
}

// Load collects configuration from environment with defaults.
func Load() Config {
	loadEnvFile()
	return Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":3000"),
		ShutdownTimeout:      durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		DBMaxOpenConns:       atoienv("DB_MAX_OPEN_CONNS", 25),
		DBConnMaxLifetime:    durenvs("DB_CONN_MAX_LIFETIME", 300),
		DBTimeout:            durenvms("DB_TIMEOUT_MS", 5000),
		RedisAddr:            getenv("REDIS_ADDR", ""),
		RedisTTL:             durenvs("REDIS_TTL", 60),
		CartReconcileUpdates: boolenv("CART_RECONCILE_UPDATES", false),
	}
}
