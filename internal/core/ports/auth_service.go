package ports

import (
	"context"
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// ProfileInput carries the fields a user may change on their own account.
type ProfileInput struct {
	Name  *string
	Phone *string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers the account lifecycle of the authenticated user.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	UpdateProfile(ctx context.Context, user *domain.User, in ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, user *domain.User, current, next string) error
	// ForgotPassword returns the raw reset token, or "" when no active account
	// matches email. Callers must not reveal which case occurred.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	Logout(ctx context.Context, claims *TokenClaims) error
	Deactivate(ctx context.Context, user *domain.User) error
}
