package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

const defaultTokenTTL = 30 * 24 * time.Hour

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 access tokens bound to a user id and role.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService. A nil clock uses time.Now.
func NewTokenService(secret string, ttl time.Duration, now func() time.Time) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: now}
}

var _ ports.TokenService = (*TokenService)(nil)

func (s *TokenService) Issue(userID string, role domain.Role) (string, *ports.TokenClaims, error) {
	now := s.now()
	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, toTokenClaims(&claims, role), nil
}

func (s *TokenService) Verify(raw string) (*ports.TokenClaims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return toTokenClaims(&claims, role), nil
}

func toTokenClaims(c *accessClaims, role domain.Role) *ports.TokenClaims {
	out := &ports.TokenClaims{ID: c.ID, UserID: c.Subject, Role: role}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
