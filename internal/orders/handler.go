package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"tableside/internal/domain"
	"tableside/internal/httpx"
	"tableside/internal/messaging"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID string, cart []domain.CartLine) (*Placed, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	ledger       OrderPlacer
	reader       OrderReader
	producer     EventPublisher
	logger       *slog.Logger
	placeCounter metric.Int64Counter
}

// NewHandler wires the order endpoints. producer may be nil when Kafka is
// not configured; events are then skipped.
func NewHandler(ledger OrderPlacer, reader OrderReader, producer EventPublisher, logger *slog.Logger) *Handler {
	counter, err := otel.Meter("tableside/orders").Int64Counter("orders.placed",
		metric.WithDescription("Number of successfully placed orders"),
	)
	if err != nil {
		logger.Warn("failed to create orders.placed counter", "error", err)
	}

	return &Handler{
		ledger:       ledger,
		reader:       reader,
		producer:     producer,
		logger:       logger,
		placeCounter: counter,
	}
}

type placeOrderRequest struct {
	UserID string            `json:"user_id"`
	Items  []domain.CartLine `json:"items"`
}

type placeOrderResponse struct {
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "user_id is required")
		return
	}

	placed, err := h.ledger.PlaceOrder(r.Context(), req.UserID, req.Items)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	if h.placeCounter != nil {
		h.placeCounter.Add(r.Context(), 1)
	}

	if h.producer != nil {
		event := domain.OrderPlacedEvent{
			OrderID:   placed.Order.ID,
			UserID:    placed.Order.UserID,
			UserEmail: placed.UserEmail,
			Total:     placed.Order.Total,
			Items:     placed.Order.Items,
			Timestamp: placed.Order.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), placed.Order.ID, event); err != nil {
			h.logger.Error("failed to publish order placed event", "error", err, "order_id", placed.Order.ID)
		}
	}

	h.logger.Info("order placed",
		"order_id", placed.Order.ID,
		"user_id", placed.Order.UserID,
		"total", placed.Order.Total,
	)
	httpx.JSON(w, h.logger, http.StatusCreated, placeOrderResponse{
		OrderID: placed.Order.ID,
		Total:   placed.Order.Total,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing user id")
		return
	}

	orders, err := h.reader.ListByUser(r.Context(), userID)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("orders listed", "user_id", userID, "count", len(orders))
	httpx.JSON(w, h.logger, http.StatusOK, orders)
}

// interface checks against the concrete implementations
var (
	_ OrderPlacer    = (*Ledger)(nil)
	_ OrderReader    = (*OrderRepository)(nil)
	_ EventPublisher = (*messaging.Producer)(nil)
)
