package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is the unit of sale. Stock is only mutated by order placement
// and administrative updates, and must never go negative.
type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
