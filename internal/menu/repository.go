package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tableside/internal/domain"
)

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	item.ID = uuid.New().String()
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, item.ID, item.Name, item.Price, item.Stock, item.CreatedAt)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("insert menu item: %w", err)
	}

	return item, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Price, &item.Stock, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ItemNotFoundError{ItemID: id}
		}
		return nil, fmt.Errorf("fetch menu item: %w", err)
	}

	return item, nil
}

func (r *MenuRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM menu_items
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Stock, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Update replaces name, price and stock in one administrative write. Order
// placement never goes through here; it deducts stock under its own locks.
func (r *MenuRepository) Update(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $2, price = $3, stock = $4, updated_at = now()
		WHERE id = $1
	`, item.ID, item.Name, item.Price, item.Stock)
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &domain.ItemNotFoundError{ItemID: item.ID}
	}

	return r.GetByID(ctx, item.ID)
}
