package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	SeedToken   string
	Env         string
}

// Load reads .env if present and returns the process configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:        getEnv("PORT", "5050"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SeedToken:   getEnv("SEED_TOKEN", ""),
		Env:         getEnv("ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
