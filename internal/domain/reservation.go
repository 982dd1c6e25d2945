package domain

import "time"

type Table struct {
	ID     string `json:"id"`
	Number int    `json:"table_number"`
	Seats  int    `json:"seats"`
}

// Reservation occupies one (table, reserved_at) slot. Slot uniqueness is
// enforced by the store, not by callers.
type Reservation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TableID    string    `json:"table_id"`
	ReservedAt time.Time `json:"reserved_at"`
	CreatedAt  time.Time `json:"created_at"`
}
