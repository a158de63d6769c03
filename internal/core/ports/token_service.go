package ports

import (
	"context"
	"time"

	"github.com/quickgram/auth-service/internal/core/domain"
)

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(userID, email string) (string, *domain.Claims, error)
	Verify(token string) (*domain.Claims, error)
	Refresh(token string) (string, *domain.Claims, error)
}

// TokenRevoker is the optional revocation list consulted on refresh and
// on authenticated routes. A nil TokenRevoker means purely stateless sessions.
type TokenRevoker interface {
	// Revoke marks tokenID as unusable until the given time. It reports
	// false when the token was already revoked, so exactly one caller wins
	// a concurrent revocation.
	Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
