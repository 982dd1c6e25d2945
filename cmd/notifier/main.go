package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tableside/internal/config"
	"tableside/internal/messaging"
	"tableside/internal/notifier"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}
	if cfg.EmailURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	handler := notifier.NewHandler(cfg.EmailURL, httpClient, logger)

	orderConsumer := messaging.NewConsumer(cfg.KafkaBrokers, messaging.TopicOrderPlaced, "notifier")
	defer func() { _ = orderConsumer.Close() }()

	reservationConsumer := messaging.NewConsumer(cfg.KafkaBrokers, messaging.TopicReservationCreated, "notifier")
	defer func() { _ = reservationConsumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notifier", "brokers", cfg.KafkaBrokers)

	var wg sync.WaitGroup
	consume := func(c *messaging.Consumer, handle func(context.Context, []byte) error, topic string) {
		defer wg.Done()
		if err := c.Consume(ctx, handle); err != nil {
			if ctx.Err() == context.Canceled {
				logger.Info("consumer stopped", "topic", topic)
				return
			}
			logger.Error("consumer error", "error", err, "topic", topic)
			cancel()
		}
	}

	wg.Add(2)
	go consume(orderConsumer, handler.HandleOrderPlaced, messaging.TopicOrderPlaced)
	go consume(reservationConsumer, handler.HandleReservationCreated, messaging.TopicReservationCreated)
	wg.Wait()
}
