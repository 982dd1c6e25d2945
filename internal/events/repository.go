package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tableside/internal/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, event_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.Title, event.Description, event.EventDate, event.CreatedAt)
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event := &domain.Event{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, event_date, created_at
		FROM events
		WHERE id = $1
	`, id).Scan(&event.ID, &event.Title, &event.Description, &event.EventDate, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, event_date, created_at
		FROM events
		ORDER BY event_date
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.Title, &event.Description, &event.EventDate, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Register adds an attendee. The event must exist, and one email can only
// register once per event; the unique index arbitrates concurrent attempts.
func (r *EventRepository) Register(ctx context.Context, eventID, name, email string) (domain.Registration, error) {
	if _, err := r.GetByID(ctx, eventID); err != nil {
		return domain.Registration{}, err
	}

	reg := domain.Registration{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO registrations (id, event_id, name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, email) DO NOTHING
	`, reg.ID, reg.EventID, reg.Name, reg.Email, reg.CreatedAt)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("insert registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Registration{}, err
	}
	if affected == 0 {
		return domain.Registration{}, domain.ErrAlreadyRegistered
	}

	return reg, nil
}

func (r *EventRepository) ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	if _, err := r.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, name, email, created_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	regs := []domain.Registration{}
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.Name, &reg.Email, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return regs, nil
}
