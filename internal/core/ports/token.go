package ports

import (
	"context"
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	ID        string
	UserID    string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed access tokens.
type TokenService interface {
	Issue(userID string, role domain.Role) (string, *TokenClaims, error)
	// Verify returns domain.ErrTokenExpired for a well-formed token past its
	// expiry and domain.ErrTokenInvalid for anything else it rejects.
	Verify(raw string) (*TokenClaims, error)
}

// TokenDenylist records tokens revoked before their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LoginLimiter counts failed logins per key within a sliding window.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
