// Package config loads service configuration from the environment, with
// optional .env support for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresURL  string
	Port         string
	KafkaBrokers []string
	OTLPEndpoint string

	// Downstream service base URLs, used by the gateway and the notifier.
	RestaurantURL string
	EventsURL     string
	ShortenerURL  string
	EmailURL      string

	// Public base URL the shortener embeds in generated short links.
	ShortBaseURL string
}

// Load reads the environment. Missing values are left empty; each main
// validates the fields it actually requires.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		Port:          os.Getenv("PORT"),
		KafkaBrokers:  splitBrokers(os.Getenv("KAFKA_BROKERS")),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		RestaurantURL: os.Getenv("RESTAURANT_SERVICE_URL"),
		EventsURL:     os.Getenv("EVENTS_SERVICE_URL"),
		ShortenerURL:  os.Getenv("SHORTENER_SERVICE_URL"),
		EmailURL:      os.Getenv("EMAIL_SERVICE_URL"),
		ShortBaseURL:  getEnv("SHORT_BASE_URL", "http://localhost:8083"),
	}
}

func splitBrokers(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
