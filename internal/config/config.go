package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the map backend.
type Config struct {
	Port            string
	DBPath          string
	JWTSecret       string
	SearchRateLimit float64 // Requests per second per IP on search routes
	SearchRateBurst int
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to development defaults.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded configuration from .env")
	}

	return &Config{
		Port:            getEnv("PORT", ":8080"),
		DBPath:          getEnv("DB_PATH", "./data/geomap.db"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		SearchRateLimit: getEnvFloat("SEARCH_RATE_LIMIT", 10),
		SearchRateBurst: getEnvInt("SEARCH_RATE_BURST", 20),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
