package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/api/metrics"
	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// authUserKey holds the identity in the echo.Context store. Echo keys are plain
// strings, so CurrentUser only trusts values of type *AuthenticatedUser.
const authUserKey = "crm.auth.user"

// AuthenticatedUser is the identity Authenticate attaches to a request.
type AuthenticatedUser struct {
	User   *domain.User
	Claims *ports.TokenClaims
}

// UserFinder loads the account a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate authenticates bearer tokens and authorizes roles.
type Gate struct {
	tokens   ports.TokenService
	denylist ports.TokenDenylist
	users    UserFinder
	log      zerolog.Logger
}

// NewGate builds a Gate. A nil denylist disables revocation checks.
func NewGate(tokens ports.TokenService, denylist ports.TokenDenylist, users UserFinder, log zerolog.Logger) *Gate {
	return &Gate{tokens: tokens, denylist: denylist, users: users, log: log}
}

// Protect returns the authenticate and authorize chain, in that order, for a
// route open to the given roles.
func (g *Gate) Protect(roles ...domain.Role) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Authenticate, Authorize(roles...)}
}

// Authenticate verifies the bearer token and loads its active user.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return reject("no_token", domain.ErrNoToken)
		}

		claims, err := g.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return reject("expired", domain.ErrTokenExpired)
			}
			return reject("invalid", domain.ErrTokenInvalid)
		}

		ctx := c.Request().Context()
		if g.denylist != nil {
			revoked, err := g.denylist.IsRevoked(ctx, claims.ID)
			if err != nil {
				g.log.Warn().Err(err).Msg("denylist unavailable, accepting token")
			} else if revoked {
				return reject("revoked", domain.ErrTokenRevoked)
			}
		}

		user, err := g.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return reject("unknown_user", domain.ErrAccountNotFound)
			}
			return err
		}
		if !user.Active {
			return reject("inactive", domain.ErrAccountInactive)
		}

		c.Set(authUserKey, &AuthenticatedUser{User: user.Sanitized(), Claims: claims})
		return next(c)
	}
}

// CurrentUser returns the identity attached by Authenticate.
func CurrentUser(c echo.Context) (*AuthenticatedUser, bool) {
	au, ok := c.Get(authUserKey).(*AuthenticatedUser)
	return au, ok && au != nil && au.User != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(reason string, err error) error {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	return err
}
