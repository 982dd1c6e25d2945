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

	"tableside/internal/auth"
	"tableside/internal/config"
	"tableside/internal/menu"
	"tableside/internal/messaging"
	"tableside/internal/orders"
	"tableside/internal/reservations"
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

	tel, err := telemetry.Init(ctx, "restaurant", "0.1.0", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL, "restaurant")
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var orderPublisher orders.EventPublisher
	var reservationPublisher reservations.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		orderProducer := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderPlaced)
		defer func() { _ = orderProducer.Close() }()
		orderPublisher = orderProducer

		reservationProducer := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicReservationCreated)
		defer func() { _ = reservationProducer.Close() }()
		reservationPublisher = reservationProducer
	}

	authHandler := auth.NewHandler(auth.NewUserRepository(db), logger)
	menuHandler := menu.NewHandler(menu.NewMenuRepository(db), logger)
	orderHandler := orders.NewHandler(orders.NewLedger(db), orders.NewOrderRepository(db), orderPublisher, logger)
	reservationHandler := reservations.NewHandler(reservations.NewReservationRepository(db), reservationPublisher, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", telemetry.WithHTTPRoute(authHandler.HandleRegister))
	mux.HandleFunc("POST /auth/login", telemetry.WithHTTPRoute(authHandler.HandleLogin))
	mux.HandleFunc("GET /menu", telemetry.WithHTTPRoute(menuHandler.HandleList))
	mux.HandleFunc("POST /menu", telemetry.WithHTTPRoute(menuHandler.HandleCreate))
	mux.HandleFunc("GET /menu/{id}", telemetry.WithHTTPRoute(menuHandler.HandleGet))
	mux.HandleFunc("PUT /menu/{id}", telemetry.WithHTTPRoute(menuHandler.HandleUpdate))
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandlePlace))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.HandleFunc("GET /users/{userId}/orders", telemetry.WithHTTPRoute(orderHandler.HandleListByUser))
	mux.HandleFunc("POST /tables", telemetry.WithHTTPRoute(reservationHandler.HandleCreateTable))
	mux.HandleFunc("GET /tables", telemetry.WithHTTPRoute(reservationHandler.HandleListTables))
	mux.HandleFunc("GET /tables/{id}/reservations", telemetry.WithHTTPRoute(reservationHandler.HandleListByTable))
	mux.HandleFunc("POST /reservations", telemetry.WithHTTPRoute(reservationHandler.HandleReserve))
	mux.Handle("GET /metrics", tel.MetricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "restaurant",
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
		logger.Info("starting restaurant service", "port", port)
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
