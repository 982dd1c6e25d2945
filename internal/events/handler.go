package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"tableside/internal/domain"
	"tableside/internal/httpx"
)

type EventStore interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Register(ctx context.Context, eventID, name, email string) (domain.Registration, error)
	ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error)
}

type Handler struct {
	store  EventStore
	logger *slog.Logger
}

func NewHandler(store EventStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "title is required")
		return
	}
	if req.EventDate.IsZero() {
		httpx.Error(w, h.logger, http.StatusBadRequest, "event_date is required")
		return
	}

	event, err := h.store.Create(r.Context(), domain.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
	})
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("event created", "event_id", event.ID, "title", event.Title)
	httpx.JSON(w, h.logger, http.StatusCreated, event)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing event id")
		return
	}

	event, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, event)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.List(r.Context())
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, events)
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing event id")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "name and email are required")
		return
	}

	reg, err := h.store.Register(r.Context(), eventID, req.Name, req.Email)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("registration created", "registration_id", reg.ID, "event_id", reg.EventID)
	httpx.JSON(w, h.logger, http.StatusCreated, reg)
}

func (h *Handler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing event id")
		return
	}

	regs, err := h.store.ListRegistrations(r.Context(), eventID)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, regs)
}

var _ EventStore = (*EventRepository)(nil)
