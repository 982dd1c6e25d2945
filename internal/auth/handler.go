package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"tableside/internal/domain"
	"tableside/internal/httpx"
)

const minPasswordLength = 8

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, string, error)
}

type Handler struct {
	store  UserStore
	logger *slog.Logger
}

func NewHandler(store UserStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID string `json:"user_id"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		httpx.Error(w, h.logger, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		httpx.Error(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.Create(r.Context(), req.Username, req.Email, string(hash))
	if err != nil {
		httpx.DomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	httpx.JSON(w, h.logger, http.StatusCreated, authResponse{UserID: user.ID})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		httpx.Error(w, h.logger, http.StatusBadRequest, "username and password are required")
		return
	}

	user, hash, err := h.store.FindByUsername(r.Context(), req.Username)
	if err != nil {
		// Unknown usernames and wrong passwords are indistinguishable to
		// the caller.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httpx.DomainError(w, h.logger, domain.ErrInvalidCredentials)
			return
		}
		httpx.DomainError(w, h.logger, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		httpx.DomainError(w, h.logger, domain.ErrInvalidCredentials)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	httpx.JSON(w, h.logger, http.StatusOK, authResponse{UserID: user.ID})
}

var _ UserStore = (*UserRepository)(nil)
