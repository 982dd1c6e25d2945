package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is published after a successful order commit.
type OrderPlacedEvent struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	UserEmail string          `json:"user_email"`
	Total     decimal.Decimal `json:"total"`
	Items     []LineItem      `json:"items"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReservationCreatedEvent is published after a reservation is committed.
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	TableNumber   int       `json:"table_number"`
	ReservedAt    time.Time `json:"reserved_at"`
	Timestamp     time.Time `json:"timestamp"`
}
