package ports

import (
	"context"
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// UserPatch lists the user fields to change. Nil fields are left untouched.
type UserPatch struct {
	Email  *string
	Name   *string
	Phone  *string
	Role   *domain.Role
	Active *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Phone == nil && p.Role == nil && p.Active == nil
}

// RevokesAdmin reports whether applying the patch to an active administrator
// would leave that account without administrative power.
func (p UserPatch) RevokesAdmin() bool {
	return (p.Role != nil && *p.Role != domain.RoleAdmin) || (p.Active != nil && !*p.Active)
}

// UserCounts aggregates the user population. Admins counts active administrators.
type UserCounts struct {
	Total  int64
	Active int64
	Admins int64
}

// UserRepository persists user accounts.
//
// Update and Delete enforce the last-administrator rule atomically: when the
// target is an active administrator and the change would leave zero active
// administrators, they return domain.ErrSoleAdmin and change nothing.
type UserRepository interface {
	// Create stores a new user and returns it with its assigned ID.
	// A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	// Delete removes the user together with every client it owns.
	Delete(ctx context.Context, id string) error

	// SetPasswordHash replaces the password hash and clears any pending reset token.
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// FindByResetToken returns the active user holding tokenHash, provided it
	// has not expired at now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// PurgeExpiredResetTokens clears reset tokens that expired at or before now.
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error

	Counts(ctx context.Context) (UserCounts, error)
}
