package shortener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tableside/internal/domain"
)

// maxCodeAttempts bounds collision retries; with a 62^6 code space more
// than a couple of attempts means something is wrong with the generator.
const maxCodeAttempts = 5

type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create stores the URL under a fresh random code. Collisions are resolved
// by the unique index and a retry, never by a racy exists-check.
func (r *LinkRepository) Create(ctx context.Context, originalURL string) (domain.ShortLink, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return domain.ShortLink{}, fmt.Errorf("generate code: %w", err)
		}

		link := domain.ShortLink{
			Code:        code,
			OriginalURL: originalURL,
			CreatedAt:   time.Now().UTC(),
		}

		result, err := r.db.ExecContext(ctx, `
			INSERT INTO urls (code, original_url, hits, created_at)
			VALUES ($1, $2, 0, $3)
			ON CONFLICT (code) DO NOTHING
		`, link.Code, link.OriginalURL, link.CreatedAt)
		if err != nil {
			return domain.ShortLink{}, fmt.Errorf("insert link: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return domain.ShortLink{}, err
		}
		if affected == 1 {
			return link, nil
		}
	}

	return domain.ShortLink{}, errors.New("exhausted short code attempts")
}

// Resolve returns the original URL and counts the hit in one statement, so
// concurrent redirects never lose an increment.
func (r *LinkRepository) Resolve(ctx context.Context, code string) (string, error) {
	var originalURL string
	err := r.db.QueryRowContext(ctx, `
		UPDATE urls
		SET hits = hits + 1
		WHERE code = $1
		RETURNING original_url
	`, code).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrLinkNotFound
		}
		return "", fmt.Errorf("resolve link: %w", err)
	}

	return originalURL, nil
}

func (r *LinkRepository) Get(ctx context.Context, code string) (*domain.ShortLink, error) {
	link := &domain.ShortLink{}

	err := r.db.QueryRowContext(ctx, `
		SELECT code, original_url, hits, created_at
		FROM urls
		WHERE code = $1
	`, code).Scan(&link.Code, &link.OriginalURL, &link.Hits, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("fetch link: %w", err)
	}

	return link, nil
}
