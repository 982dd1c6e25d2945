package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one requested (item, quantity) pair in a place-order call.
type CartLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// LineItem is a persisted order line. UnitPrice is a snapshot taken at
// purchase time and does not follow later menu price changes.
type LineItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Order is immutable once placed. Total equals the sum of line subtotals.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Items     []LineItem      `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}
