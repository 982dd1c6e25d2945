package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tableside/internal/domain"
)

// ReservationRepository owns tables and their reservation slots. Slot
// uniqueness is arbitrated by the database, not by a read-then-write check:
// the unique index on (table_id, reserved_at) makes the insert itself the
// conflict decision, so two concurrent requests can never both win a slot.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Confirmed carries the reservation plus the denormalized bits the caller
// needs for event publication.
type Confirmed struct {
	Reservation domain.Reservation
	TableNumber int
	UserEmail   string
}

func (r *ReservationRepository) CreateTable(ctx context.Context, number, seats int) (domain.Table, error) {
	table := domain.Table{
		ID:     uuid.New().String(),
		Number: number,
		Seats:  seats,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tables (id, table_number, seats)
		VALUES ($1, $2, $3)
		ON CONFLICT (table_number) DO NOTHING
		RETURNING id
	`, table.ID, table.Number, table.Seats).Scan(&table.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Table{}, domain.ErrTableNumberTaken
		}
		return domain.Table{}, fmt.Errorf("insert table: %w", err)
	}

	return table, nil
}

func (r *ReservationRepository) ListTables(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, table_number, seats
		FROM tables
		ORDER BY table_number
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []domain.Table{}
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Seats); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}

// Reserve claims the (table, slot) pair for the user, or reports SlotTaken
// if another reservation already occupies it.
func (r *ReservationRepository) Reserve(ctx context.Context, userID, tableID string, slot time.Time) (*Confirmed, error) {
	var tableNumber int
	err := r.db.QueryRowContext(ctx, `
		SELECT table_number FROM tables WHERE id = $1
	`, tableID).Scan(&tableNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTableNotFound
		}
		return nil, fmt.Errorf("fetch table: %w", err)
	}

	var email string
	err = r.db.QueryRowContext(ctx, `
		SELECT email FROM users WHERE id = $1
	`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	reservation := domain.Reservation{
		ID:         uuid.New().String(),
		UserID:     userID,
		TableID:    tableID,
		ReservedAt: slot.UTC(),
		CreatedAt:  time.Now().UTC(),
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations (id, user_id, table_id, reserved_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (table_id, reserved_at) DO NOTHING
	`, reservation.ID, reservation.UserID, reservation.TableID, reservation.ReservedAt, reservation.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &domain.SlotTakenError{TableID: tableID, Slot: reservation.ReservedAt}
	}

	return &Confirmed{
		Reservation: reservation,
		TableNumber: tableNumber,
		UserEmail:   email,
	}, nil
}

func (r *ReservationRepository) ListByTable(ctx context.Context, tableID string) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, table_id, reserved_at, created_at
		FROM reservations
		WHERE table_id = $1
		ORDER BY reserved_at
	`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reservations := []domain.Reservation{}
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.TableID, &res.ReservedAt, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}
