package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, ownerID int, tokenHash string, expiresAt time.Time) error
	// Validate возвращает ownerID для действующего токена
	Validate(ctx context.Context, tokenHash string) (int, error)
}
