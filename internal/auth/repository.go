package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tableside/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user, letting the unique index on username arbitrate
// duplicates instead of a racy pre-check.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING
		RETURNING id
	`, user.ID, user.Username, user.Email, passwordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// FindByUsername returns the user and their password hash. The hash never
// leaves this package.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	user := &domain.User{}
	var hash string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Email, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("fetch user: %w", err)
	}

	return user, hash, nil
}
