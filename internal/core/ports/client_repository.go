package ports

import (
	"context"
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// ClientFilter narrows a client listing. Zero-valued fields do not filter.
type ClientFilter struct {
	OwnerID  string
	Query    string // case-insensitive match on name, email or company
	Status   domain.ClientStatus
	Priority domain.ClientPriority
	// ContactBefore keeps clients never contacted or last contacted before it.
	ContactBefore *time.Time
}

// ClientCountFilter narrows a client count. Zero-valued fields do not filter.
type ClientCountFilter struct {
	OwnerID       string
	CreatedFrom   time.Time // inclusive
	CreatedBefore time.Time // exclusive
}

// ClientGroupField names a field clients can be grouped by.
type ClientGroupField string

const (
	GroupByStatus   ClientGroupField = "status"
	GroupByPriority ClientGroupField = "priority"
)

// ClientPatch lists the client fields to change. Nil fields are left untouched;
// a non-nil pointer to "" clears an optional field.
type ClientPatch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	Address       *string
	Company       *string
	Notes         *string
	Status        *domain.ClientStatus
	Priority      *domain.ClientPriority
	Tags          *[]string
	LastContactAt *time.Time
}

// ClientRepository persists client records. The (owner, email) pair is unique;
// violating it yields domain.ErrClientExists.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByOwnerAndEmail(ctx context.Context, ownerID, email string) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error)
	Update(ctx context.Context, id string, patch ClientPatch, now time.Time) (*domain.Client, error)
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context, filter ClientCountFilter) (int64, error)
	// CountBy groups the clients of ownerID (all owners when empty) by field.
	CountBy(ctx context.Context, ownerID string, field ClientGroupField) (map[string]int64, error)
}
