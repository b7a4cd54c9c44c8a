package config

import (
	"os"
	"strconv"
)

// Get returns the value of an environment variable, or fallback when it
// is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns an integer environment variable, or fallback when it is
// unset or unparsable.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Runtime configuration shared by both binaries. Values come from the
// environment (optionally seeded from a .env file by main).
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	Port          string
	GeocodeAPIKey string
	BatchSize     int
	LoadWorkers   int
	EnrichWorkers int
	EventChannel  string
}

// Load reads configuration from the environment. DatabaseURL and
// GeocodeAPIKey are validated by the callers that require them.
func Load() Config {
	return Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		Port:          Get("PORT", "8080"),
		GeocodeAPIKey: os.Getenv("GEOCODE_API_KEY"),
		BatchSize:     GetInt("BATCH_SIZE", 50_000),
		LoadWorkers:   GetInt("LOAD_WORKERS", 4),
		EnrichWorkers: GetInt("ENRICH_WORKERS", 1),
		EventChannel:  Get("EVENT_CHANNEL", "trips.ingest.batches"),
	}
}
