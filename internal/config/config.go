package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         int
	DatabasePath       string
	StoreBackend       string // "sqlite" or "memory"
	JWTSecret          string
	BcryptCost         int
	AllowedOrigins     []string
	EventRetentionDays int
	JanitorCron        string // cron spec for the nightly event prune
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./chatly.db"),
		StoreBackend:       getEnv("STORE_BACKEND", "sqlite"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 10),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		EventRetentionDays: getEnvAsInt("EVENT_RETENTION_DAYS", 30),
		JanitorCron:        getEnv("JANITOR_CRON", "0 4 * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
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

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
