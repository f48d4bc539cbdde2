package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// Sessions
	SessionSecret   string
	SessionTTLHours int
	SecureCookies   bool

	// Google Identity
	GoogleClientID string

	// Results worker
	ResultWorkers int

	// Sign-in attempts per client IP per minute
	AuthRateLimit int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	env := getEnvOrDefault("ENV", "development")

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             env,
		DatabaseURL:     mustGetEnv("DATABASE_URL"),
		MigrationsDir:   getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:        mustGetEnv("REDIS_URL"),
		SessionSecret:   mustGetEnv("SESSION_SECRET"),
		SessionTTLHours: getEnvAsIntOrDefault("SESSION_TTL_HOURS", 336),
		SecureCookies:   getEnvAsBoolOrDefault("SECURE_COOKIES", env != "development"),
		GoogleClientID:  mustGetEnv("GOOGLE_OAUTH_CLIENT_ID"),
		ResultWorkers:   getEnvAsIntOrDefault("RESULT_WORKERS", 2),
		AuthRateLimit:   getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
