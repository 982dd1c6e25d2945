// Package notifier turns committed domain events into customer emails.
// Stock accounting happens synchronously inside the order ledger, so a
// failed email never affects the order itself; the consumer simply retries.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"tableside/internal/domain"
)

type Handler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

// HandleOrderPlaced consumes one order.placed payload.
func (h *Handler) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order placed event: %w", err)
	}

	h.logger.Info("processing order placed event", "order_id", event.OrderID, "user_id", event.UserID)

	body := emailBody{
		To:      event.UserEmail,
		Subject: "Order confirmation " + event.OrderID,
		Body: fmt.Sprintf("Your order %s with %d items for a total of %s has been placed.",
			event.OrderID, len(event.Items), event.Total.StringFixed(2)),
	}
	if err := h.sendEmail(ctx, body); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}

	h.logger.Info("order confirmation sent", "order_id", event.OrderID)
	return nil
}

// HandleReservationCreated consumes one reservation.created payload.
func (h *Handler) HandleReservationCreated(ctx context.Context, payload []byte) error {
	var event domain.ReservationCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal reservation created event: %w", err)
	}

	h.logger.Info("processing reservation created event", "reservation_id", event.ReservationID)

	body := emailBody{
		To:      event.UserEmail,
		Subject: "Reservation confirmed",
		Body: fmt.Sprintf("Table %d is reserved for you at %s.",
			event.TableNumber, event.ReservedAt.Format("Mon, 02 Jan 2006 15:04")),
	}
	if err := h.sendEmail(ctx, body); err != nil {
		return fmt.Errorf("send reservation confirmation: %w", err)
	}

	h.logger.Info("reservation confirmation sent", "reservation_id", event.ReservationID)
	return nil
}

type emailBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *Handler) sendEmail(ctx context.Context, body emailBody) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
