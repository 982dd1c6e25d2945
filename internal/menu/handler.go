package menu

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"tableside/internal/domain"
	"tableside/internal/httpx"
)

type MenuStore interface {
	Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	List(ctx context.Context) ([]domain.MenuItem, error)
	Update(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

type Handler struct {
	store  MenuStore
	logger *slog.Logger
}

func NewHandler(store MenuStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type menuItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func (req *menuItemRequest) validate() error {
	if req.Name == "" {
		return domain.Validation("name is required")
	}
	if req.Price.IsNegative() {
		return domain.Validation("price must not be negative")
	}
	if req.Stock < 0 {
		return domain.Validation("stock must not be negative")
	}
	return nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	item, err := h.store.Create(r.Context(), domain.MenuItem{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("menu item created", "item_id", item.ID, "name", item.Name)
	httpx.JSON(w, h.logger, http.StatusCreated, item)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing menu item id")
		return
	}

	item, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, item)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, items)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing menu item id")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	item, err := h.store.Update(r.Context(), domain.MenuItem{
		ID:    id,
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("menu item updated", "item_id", item.ID)
	httpx.JSON(w, h.logger, http.StatusOK, item)
}

var _ MenuStore = (*MenuRepository)(nil)
