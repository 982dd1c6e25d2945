// Package httpx holds the JSON response helpers shared by all handler
// packages. It is the only place where domain error kinds are translated
// into HTTP status codes.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tableside/internal/domain"
)

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, map[string]string{"error": message})
}

// DomainError maps a classified domain error onto the wire. Unclassified
// errors are treated as internal and their detail is kept out of the body.
func DomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	if kind == 0 {
		logger.Error("internal error", "error", err)
		Error(w, logger, http.StatusInternalServerError, "internal server error")
		return
	}
	Error(w, logger, StatusOf(kind), err.Error())
}

// StatusOf resolves a domain error kind to its HTTP status.
// Integrity violations surface as 400, matching the validation family.
func StatusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
