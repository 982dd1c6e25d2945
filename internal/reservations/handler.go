package reservations

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"tableside/internal/domain"
	"tableside/internal/httpx"
)

type ReservationStore interface {
	CreateTable(ctx context.Context, number, seats int) (domain.Table, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
	Reserve(ctx context.Context, userID, tableID string, slot time.Time) (*Confirmed, error)
	ListByTable(ctx context.Context, tableID string) ([]domain.Reservation, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store          ReservationStore
	producer       EventPublisher
	logger         *slog.Logger
	reserveCounter metric.Int64Counter
}

func NewHandler(store ReservationStore, producer EventPublisher, logger *slog.Logger) *Handler {
	counter, err := otel.Meter("tableside/reservations").Int64Counter("reservations.created",
		metric.WithDescription("Number of successfully created reservations"),
	)
	if err != nil {
		logger.Warn("failed to create reservations.created counter", "error", err)
	}

	return &Handler{
		store:          store,
		producer:       producer,
		logger:         logger,
		reserveCounter: counter,
	}
}

type createTableRequest struct {
	Number int `json:"table_number"`
	Seats  int `json:"seats"`
}

func (h *Handler) HandleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Number <= 0 {
		httpx.Error(w, h.logger, http.StatusBadRequest, "table_number must be greater than zero")
		return
	}
	if req.Seats <= 0 {
		httpx.Error(w, h.logger, http.StatusBadRequest, "seats must be greater than zero")
		return
	}

	table, err := h.store.CreateTable(r.Context(), req.Number, req.Seats)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("table created", "table_id", table.ID, "table_number", table.Number)
	httpx.JSON(w, h.logger, http.StatusCreated, table)
}

func (h *Handler) HandleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, tables)
}

type reserveRequest struct {
	UserID     string    `json:"user_id"`
	TableID    string    `json:"table_id"`
	ReservedAt time.Time `json:"reserved_at"`
}

type reserveResponse struct {
	ReservationID string `json:"reservation_id"`
}

func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.TableID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "user_id and table_id are required")
		return
	}
	if req.ReservedAt.IsZero() {
		httpx.Error(w, h.logger, http.StatusBadRequest, "reserved_at is required")
		return
	}

	confirmed, err := h.store.Reserve(r.Context(), req.UserID, req.TableID, req.ReservedAt)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	if h.reserveCounter != nil {
		h.reserveCounter.Add(r.Context(), 1)
	}

	if h.producer != nil {
		event := domain.ReservationCreatedEvent{
			ReservationID: confirmed.Reservation.ID,
			UserID:        confirmed.Reservation.UserID,
			UserEmail:     confirmed.UserEmail,
			TableNumber:   confirmed.TableNumber,
			ReservedAt:    confirmed.Reservation.ReservedAt,
			Timestamp:     confirmed.Reservation.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), confirmed.Reservation.ID, event); err != nil {
			h.logger.Error("failed to publish reservation created event", "error", err, "reservation_id", confirmed.Reservation.ID)
		}
	}

	h.logger.Info("reservation created",
		"reservation_id", confirmed.Reservation.ID,
		"table_id", confirmed.Reservation.TableID,
		"reserved_at", confirmed.Reservation.ReservedAt,
	)
	httpx.JSON(w, h.logger, http.StatusCreated, reserveResponse{ReservationID: confirmed.Reservation.ID})
}

func (h *Handler) HandleListByTable(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	if tableID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing table id")
		return
	}

	reservations, err := h.store.ListByTable(r.Context(), tableID)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, reservations)
}

var _ ReservationStore = (*ReservationRepository)(nil)
