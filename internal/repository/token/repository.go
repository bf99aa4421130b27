package token

import (
	"context"
	"time"
)

// Kinds of persisted tokens.
const (
	KindRefresh = "refresh"
	// KindRevoked marks a revoked access token id so it is rejected before expiry.
	KindRevoked = "revoked_access"
)

type Token struct {
	Token     string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
