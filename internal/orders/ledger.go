package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"tableside/internal/domain"
)

// Ledger converts carts into persisted orders while keeping per-item stock
// counts accurate. The whole validate-then-commit sequence runs inside one
// transaction holding row locks on every referenced menu item, so two
// concurrent orders can never jointly oversell an item.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Placed is the result of a successful placement. UserEmail is carried for
// event publication and never serialized in API responses.
type Placed struct {
	Order     domain.Order
	UserEmail string
}

type menuRow struct {
	price decimal.Decimal
	stock int
}

// PlaceOrder validates every cart line against current stock, then deducts
// stock and writes the order header plus line items. Any failure leaves the
// store untouched. The operation is deliberately not idempotent: identical
// carts produce distinct orders and stack their deductions.
func (l *Ledger) PlaceOrder(ctx context.Context, userID string, cart []domain.CartLine) (*Placed, error) {
	lines, err := normalizeCart(cart)
	if err != nil {
		return nil, err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var email string
	err = tx.QueryRowContext(ctx, `
		SELECT email FROM users WHERE id = $1
	`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	menu, err := lockMenuRows(ctx, tx, lines)
	if err != nil {
		return nil, err
	}

	items, total, err := buildLineItems(lines, menu)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			UPDATE menu_items
			SET stock = stock - $2, updated_at = now()
			WHERE id = $1
		`, item.MenuItemID, item.Quantity); err != nil {
			return nil, fmt.Errorf("deduct stock for item %s: %w", item.MenuItemID, err)
		}
	}

	order := domain.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Total:     total,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.UserID, order.Total, order.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), order.ID, item.MenuItemID, item.Quantity, item.UnitPrice, item.Subtotal); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	return &Placed{Order: order, UserEmail: email}, nil
}

// lockMenuRows takes row locks on every referenced menu item, in id order so
// two overlapping carts always acquire locks in the same sequence.
func lockMenuRows(ctx context.Context, tx *sql.Tx, lines []domain.CartLine) (map[string]menuRow, error) {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.MenuItemID
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, price, stock
		FROM menu_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock menu rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	menu := make(map[string]menuRow, len(lines))
	for rows.Next() {
		var id string
		var row menuRow
		if err := rows.Scan(&id, &row.price, &row.stock); err != nil {
			return nil, fmt.Errorf("scan menu row: %w", err)
		}
		menu[id] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read menu rows: %w", err)
	}

	return menu, nil
}

// normalizeCart rejects empty carts and non-positive quantities, merges
// duplicate lines for the same item so their combined quantity is validated
// against stock, and orders lines by item id.
func normalizeCart(cart []domain.CartLine) ([]domain.CartLine, error) {
	if len(cart) == 0 {
		return nil, domain.ErrEmptyCart
	}

	merged := make(map[string]int, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if line.MenuItemID == "" {
			return nil, domain.Validation("menu_item_id is required")
		}
		merged[line.MenuItemID] += line.Quantity
	}

	lines := make([]domain.CartLine, 0, len(merged))
	for id, qty := range merged {
		lines = append(lines, domain.CartLine{MenuItemID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].MenuItemID < lines[j].MenuItemID })

	return lines, nil
}

// buildLineItems checks every line against the locked menu snapshot before
// reporting any failure as the whole cart's failure, then prices the lines.
// Unit prices are snapshotted so later menu edits cannot change history.
func buildLineItems(lines []domain.CartLine, menu map[string]menuRow) ([]domain.LineItem, decimal.Decimal, error) {
	for _, line := range lines {
		row, ok := menu[line.MenuItemID]
		if !ok {
			return nil, decimal.Zero, &domain.ItemNotFoundError{ItemID: line.MenuItemID}
		}
		if line.Quantity > row.stock {
			return nil, decimal.Zero, &domain.InsufficientStockError{
				ItemID: line.MenuItemID,
				Have:   row.stock,
				Need:   line.Quantity,
			}
		}
	}

	items := make([]domain.LineItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		row := menu[line.MenuItemID]
		subtotal := row.price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, domain.LineItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			UnitPrice:  row.price,
			Subtotal:   subtotal,
		})
		total = total.Add(subtotal)
	}

	return items, total, nil
}
