package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tableside/internal/config"
	"tableside/internal/gateway"
	"tableside/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.RestaurantURL == "" || cfg.EventsURL == "" || cfg.ShortenerURL == "" {
		logger.Error("RESTAURANT_SERVICE_URL, EVENTS_SERVICE_URL and SHORTENER_SERVICE_URL are required")
		os.Exit(1)
	}

	tel, err := telemetry.Init(ctx, "gateway", "0.1.0", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		// shortener redirects must reach the caller, not be followed here
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	handler := gateway.NewHandler(
		gateway.NewServiceProxy(cfg.RestaurantURL, httpClient),
		gateway.NewServiceProxy(cfg.EventsURL, httpClient),
		gateway.NewServiceProxy(cfg.ShortenerURL, httpClient),
		logger,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/restaurant/", telemetry.WithHTTPRoute(handler.HandleRestaurant))
	mux.HandleFunc("GET /events", telemetry.WithHTTPRoute(handler.HandleEvents))
	mux.HandleFunc("POST /events", telemetry.WithHTTPRoute(handler.HandleEvents))
	mux.HandleFunc("GET /events/{id}", telemetry.WithHTTPRoute(handler.HandleEvents))
	mux.HandleFunc("GET /events/{id}/registrations", telemetry.WithHTTPRoute(handler.HandleEvents))
	mux.HandleFunc("POST /events/{id}/registrations", telemetry.WithHTTPRoute(handler.HandleEvents))
	mux.HandleFunc("POST /links", telemetry.WithHTTPRoute(handler.HandleLinks))
	mux.HandleFunc("GET /links/{code}", telemetry.WithHTTPRoute(handler.HandleLinks))
	mux.HandleFunc("GET /s/{code}", telemetry.WithHTTPRoute(handler.HandleShortRedirect))
	mux.Handle("GET /metrics", tel.MetricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "gateway",
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
		logger.Info("starting gateway service", "port", port)
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
