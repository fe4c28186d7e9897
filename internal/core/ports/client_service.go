package ports

import (
	"context"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// CreateClientInput carries a new client record. Status and Priority default
// to prospect and medium when empty.
type CreateClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Company   string
	Notes     string
	Status    string
	Priority  string
	Tags      []string
}

// UpdateClientInput carries a partial client update. OwnerID is accepted only
// when it equals the current owner.
type UpdateClientInput struct {
	OwnerID   *string
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
	Company   *string
	Notes     *string
	Status    *string
	Priority  *string
	Tags      *[]string
}

// ListClientsInput carries the optional listing filters.
type ListClientsInput struct {
	Query    string
	Status   string
	Priority string
}

// OwnerStats summarizes one user's book of clients.
type OwnerStats struct {
	Total          int64            `json:"total"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
	PriorityCounts map[string]int64 `json:"priorityCounts"`
}

// ClientService applies ownership rules to client records.
type ClientService interface {
	Create(ctx context.Context, owner *domain.User, in CreateClientInput) (*domain.Client, error)
	List(ctx context.Context, owner *domain.User, in ListClientsInput) ([]*domain.Client, error)
	ListAll(ctx context.Context, admin *domain.User, in ListClientsInput) ([]*domain.Client, error)
	Get(ctx context.Context, requester *domain.User, id string) (*domain.Client, error)
	Update(ctx context.Context, requester *domain.User, id string, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, requester *domain.User, id string) error
	TouchContact(ctx context.Context, requester *domain.User, id string) (*domain.Client, error)
	FollowUps(ctx context.Context, owner *domain.User) ([]*domain.Client, error)
	OwnerStats(ctx context.Context, owner *domain.User) (*OwnerStats, error)
}
