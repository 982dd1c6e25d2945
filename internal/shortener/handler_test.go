package shortener

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tableside/internal/domain"
)

type stubStore struct {
	link       domain.ShortLink
	target     string
	createErr  error
	resolveErr error
	getErr     error

	gotURL  string
	gotCode string
}

func (s *stubStore) Create(ctx context.Context, originalURL string) (domain.ShortLink, error) {
	s.gotURL = originalURL
	if s.createErr != nil {
		return domain.ShortLink{}, s.createErr
	}
	return s.link, nil
}

func (s *stubStore) Resolve(ctx context.Context, code string) (string, error) {
	s.gotCode = code
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.target, nil
}

func (s *stubStore) Get(ctx context.Context, code string) (*domain.ShortLink, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &s.link, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_HandleShorten(t *testing.T) {
	t.Run("creates short link", func(t *testing.T) {
		store := &stubStore{link: domain.ShortLink{Code: "abc123", OriginalURL: "https://example.com"}}
		handler := NewHandler(store, "http://short.local/", testLogger())

		reqBody := `{"url": "https://example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(reqBody))
		rec := httptest.NewRecorder()

		handler.HandleShorten(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.gotURL != "https://example.com" {
			t.Fatalf("unexpected stored url: %s", store.gotURL)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["code"] != "abc123" {
			t.Fatalf("expected abc123, got %s", resp["code"])
		}
		if resp["short_url"] != "http://short.local/abc123" {
			t.Fatalf("unexpected short_url: %s", resp["short_url"])
		}
	})

	t.Run("rejects relative url", func(t *testing.T) {
		handler := NewHandler(&stubStore{}, "http://short.local", testLogger())

		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(`{"url": "/menu"}`))
		rec := httptest.NewRecorder()

		handler.HandleShorten(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		handler := NewHandler(&stubStore{}, "http://short.local", testLogger())

		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(`{"url": "ftp://example.com/file"}`))
		rec := httptest.NewRecorder()

		handler.HandleShorten(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleRedirect(t *testing.T) {
	t.Run("redirects to original url", func(t *testing.T) {
		store := &stubStore{target: "https://example.com/menu"}
		handler := NewHandler(store, "http://short.local", testLogger())

		mux := http.NewServeMux()
		mux.HandleFunc("GET /{code}", handler.HandleRedirect)

		req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected status 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://example.com/menu" {
			t.Fatalf("unexpected redirect target: %s", loc)
		}
		if store.gotCode != "abc123" {
			t.Fatalf("expected abc123, got %s", store.gotCode)
		}
	})

	t.Run("returns 404 for unknown code", func(t *testing.T) {
		handler := NewHandler(&stubStore{resolveErr: domain.ErrLinkNotFound}, "http://short.local", testLogger())

		mux := http.NewServeMux()
		mux.HandleFunc("GET /{code}", handler.HandleRedirect)

		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	store := &stubStore{link: domain.ShortLink{Code: "abc123", OriginalURL: "https://example.com", Hits: 42}}
	handler := NewHandler(store, "http://short.local", testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /links/{code}", handler.HandleGet)

	req := httptest.NewRequest(http.MethodGet, "/links/abc123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var link domain.ShortLink
	if err := json.NewDecoder(rec.Body).Decode(&link); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if link.Hits != 42 {
		t.Fatalf("expected 42 hits, got %d", link.Hits)
	}
}
