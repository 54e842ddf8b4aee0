// Package config loads server settings from the environment, with an
// optional .env file for development.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything cmd/server needs to wire the process.
type Config struct {
	Port string
	// DatabaseURL selects the Postgres store; empty runs on the
	// in-memory store.
	DatabaseURL string
	// OTLPEndpoint enables trace export when set (host:port).
	OTLPEndpoint string
	// RateLimitRPS caps requests per second across the API.
	RateLimitRPS int
}

// Load reads the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	rps, err := strconv.Atoi(getEnv("RATE_LIMIT_RPS", "50"))
	if err != nil || rps <= 0 {
		rps = 50
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
		RateLimitRPS: rps,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
