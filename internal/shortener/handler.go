package shortener

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"tableside/internal/domain"
	"tableside/internal/httpx"
)

type LinkStore interface {
	Create(ctx context.Context, originalURL string) (domain.ShortLink, error)
	Resolve(ctx context.Context, code string) (string, error)
	Get(ctx context.Context, code string) (*domain.ShortLink, error)
}

type Handler struct {
	store           LinkStore
	baseURL         string
	logger          *slog.Logger
	redirectCounter metric.Int64Counter
}

// NewHandler wires the shortener endpoints. baseURL is the public prefix
// embedded in generated short links.
func NewHandler(store LinkStore, baseURL string, logger *slog.Logger) *Handler {
	counter, err := otel.Meter("tableside/shortener").Int64Counter("links.redirects",
		metric.WithDescription("Number of short link redirects served"),
	)
	if err != nil {
		logger.Warn("failed to create links.redirects counter", "error", err)
	}

	return &Handler{
		store:           store,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		logger:          logger,
		redirectCounter: counter,
	}
}

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
}

func (h *Handler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validURL(req.URL) {
		httpx.Error(w, h.logger, http.StatusBadRequest, "url must be absolute http or https")
		return
	}

	link, err := h.store.Create(r.Context(), req.URL)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("link created", "code", link.Code)
	httpx.JSON(w, h.logger, http.StatusCreated, shortenResponse{
		Code:     link.Code,
		ShortURL: h.baseURL + "/" + link.Code,
	})
}

func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing code")
		return
	}

	target, err := h.store.Resolve(r.Context(), code)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	if h.redirectCounter != nil {
		h.redirectCounter.Add(r.Context(), 1)
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "missing code")
		return
	}

	link, err := h.store.Get(r.Context(), code)
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	httpx.JSON(w, h.logger, http.StatusOK, link)
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

var _ LinkStore = (*LinkRepository)(nil)
