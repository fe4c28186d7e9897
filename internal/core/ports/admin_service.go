package ports

import (
	"context"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// UpdateUserInput carries an administrator's partial update of an account.
// Password is never applied; supplying it is a validation error.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Phone    *string
	Role     *string
	Active   *bool
	Password *string
}

// ClientStats is the system-wide client summary.
type ClientStats struct {
	TotalClients        int64            `json:"totalClients"`
	NewClientsThisMonth int64            `json:"newClientsThisMonth"`
	ClientsByStatus     map[string]int64 `json:"clientsByStatus"`
}

// UserStats is the system-wide user summary.
type UserStats struct {
	TotalUsers  int64 `json:"totalUsers"`
	ActiveUsers int64 `json:"activeUsers"`
	AdminUsers  int64 `json:"adminUsers"`
}

// AdminService manages accounts on behalf of an administrator.
type AdminService interface {
	ListUsers(ctx context.Context, admin *domain.User) ([]*domain.User, error)
	GetUser(ctx context.Context, admin *domain.User, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, admin *domain.User, id string, in UpdateUserInput) (*domain.User, error)
	UpdateRole(ctx context.Context, admin *domain.User, id, role string) (*domain.User, error)
	DeleteUser(ctx context.Context, admin *domain.User, id string) error
}

// StatsService computes read-only aggregates.
type StatsService interface {
	ClientStats(ctx context.Context) (*ClientStats, error)
	UserStats(ctx context.Context) (*UserStats, error)
}
