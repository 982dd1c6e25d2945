package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("reads values from environment", func(t *testing.T) {
		t.Setenv("POSTGRES_URL", "postgres://localhost:5432/tableside?sslmode=disable")
		t.Setenv("PORT", "9000")
		t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

		cfg := Load()

		if cfg.PostgresURL != "postgres://localhost:5432/tableside?sslmode=disable" {
			t.Fatalf("unexpected PostgresURL: %s", cfg.PostgresURL)
		}
		if cfg.Port != "9000" {
			t.Fatalf("unexpected Port: %s", cfg.Port)
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "broker-1:9092" {
			t.Fatalf("unexpected KafkaBrokers: %v", cfg.KafkaBrokers)
		}
	})

	t.Run("empty broker list stays nil", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "")

		cfg := Load()

		if cfg.KafkaBrokers != nil {
			t.Fatalf("expected nil brokers, got %v", cfg.KafkaBrokers)
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("SHORT_BASE_URL", "")

		cfg := Load()

		if cfg.OTLPEndpoint != "localhost:4317" {
			t.Fatalf("unexpected OTLP endpoint default: %s", cfg.OTLPEndpoint)
		}
		if cfg.ShortBaseURL != "http://localhost:8083" {
			t.Fatalf("unexpected short base url default: %s", cfg.ShortBaseURL)
		}
	})
}
