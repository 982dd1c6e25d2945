package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableside/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		kind domain.ErrorKind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindIntegrity, http.StatusBadRequest},
		{domain.KindUnauthorized, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.kind); got != tc.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestDomainError(t *testing.T) {
	t.Run("maps classified error with message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DomainError(rec, testLogger(), &domain.InsufficientStockError{ItemID: "burger", Have: 2, Need: 3})

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "insufficient stock for menu item burger: have 2, need 3" {
			t.Fatalf("unexpected error message: %s", resp["error"])
		}
	})

	t.Run("hides unclassified error detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DomainError(rec, testLogger(), errors.New("pq: connection refused"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "internal server error" {
			t.Fatalf("expected generic message, got %s", resp["error"])
		}
	})
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, testLogger(), http.StatusCreated, map[string]string{"id": "x"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}
}
