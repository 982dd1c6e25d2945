package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tableside/internal/config"
	"tableside/internal/events"
	"tableside/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	tel, err := telemetry.Init(ctx, "events", "0.1.0", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL, "events")
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	handler := events.NewHandler(events.NewEventRepository(db), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", telemetry.WithHTTPRoute(handler.HandleCreate))
	mux.HandleFunc("GET /events", telemetry.WithHTTPRoute(handler.HandleList))
	mux.HandleFunc("GET /events/{id}", telemetry.WithHTTPRoute(handler.HandleGet))
	mux.HandleFunc("POST /events/{id}/registrations", telemetry.WithHTTPRoute(handler.HandleRegister))
	mux.HandleFunc("GET /events/{id}/registrations", telemetry.WithHTTPRoute(handler.HandleListRegistrations))
	mux.Handle("GET /metrics", tel.MetricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8082"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "events",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting events service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
