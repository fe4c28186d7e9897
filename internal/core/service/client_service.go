package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// ClientService enforces ownership over client records. Owners see and edit
// their own clients; administrators may read, edit and delete any of them.
type ClientService struct {
	repo ports.ClientRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewClientService returns a ClientService. A nil clock uses time.Now.
func NewClientService(repo ports.ClientRepository, now func() time.Time, log zerolog.Logger) *ClientService {
	if now == nil {
		now = time.Now
	}
	return &ClientService{repo: repo, now: now, log: log}
}

var _ ports.ClientService = (*ClientService)(nil)

func (s *ClientService) Create(ctx context.Context, owner *domain.User, in ports.CreateClientInput) (*domain.Client, error) {
	c := &domain.Client{
		OwnerID:   owner.ID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Company:   strings.TrimSpace(in.Company),
		Notes:     in.Notes,
		Status:    domain.ClientProspect,
		Priority:  domain.PriorityMedium,
		Tags:      cleanTags(in.Tags),
	}

	verr := domain.NewValidationError("invalid client")
	checkRequired(verr, "firstName", c.FirstName)
	checkRequired(verr, "lastName", c.LastName)
	checkEmail(verr, "email", c.Email)
	if in.Status != "" {
		c.Status = domain.ClientStatus(in.Status)
		checkStatus(verr, c.Status)
	}
	if in.Priority != "" {
		c.Priority = domain.ClientPriority(in.Priority)
		checkPriority(verr, c.Priority)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, owner.ID, c.Email, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, wrapUnlessKind("create client", err)
	}

	s.log.Info().Str("client_id", created.ID).Str("owner_id", owner.ID).Msg("client created")
	return created, nil
}

func (s *ClientService) List(ctx context.Context, owner *domain.User, in ports.ListClientsInput) ([]*domain.Client, error) {
	filter, err := listFilter(in)
	if err != nil {
		return nil, err
	}
	filter.OwnerID = owner.ID
	return s.list(ctx, filter)
}

func (s *ClientService) ListAll(ctx context.Context, admin *domain.User, in ports.ListClientsInput) ([]*domain.Client, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrRoleForbidden
	}
	filter, err := listFilter(in)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *ClientService) list(ctx context.Context, filter ports.ClientFilter) ([]*domain.Client, error) {
	clients, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, requester *domain.User, id string) (*domain.Client, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessKind("get client", err)
	}
	if !canAccess(requester, c) {
		s.log.Warn().Str("client_id", id).Str("user_id", requester.ID).Msg("client access denied")
		return nil, domain.ErrClientAccess
	}
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, requester *domain.User, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	current, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError("invalid client update")
	if in.OwnerID != nil && *in.OwnerID != current.OwnerID {
		verr.Add("ownerId", "client owner cannot be changed")
	}

	var patch ports.ClientPatch
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		checkRequired(verr, "firstName", v)
		patch.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		checkRequired(verr, "lastName", v)
		patch.LastName = &v
	}
	if in.Email != nil {
		v := normalizeEmail(*in.Email)
		checkEmail(verr, "email", v)
		patch.Email = &v
	}
	patch.Phone = trimmed(in.Phone)
	patch.Address = trimmed(in.Address)
	patch.Company = trimmed(in.Company)
	patch.Notes = in.Notes
	if in.Status != nil {
		v := domain.ClientStatus(*in.Status)
		checkStatus(verr, v)
		patch.Status = &v
	}
	if in.Priority != nil {
		v := domain.ClientPriority(*in.Priority)
		checkPriority(verr, v)
		patch.Priority = &v
	}
	if in.Tags != nil {
		v := cleanTags(*in.Tags)
		patch.Tags = &v
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != current.Email {
		if err := s.ensureEmailFree(ctx, current.OwnerID, *patch.Email, current.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, wrapUnlessKind("update client", err)
	}
	s.log.Info().Str("client_id", id).Str("user_id", requester.ID).Msg("client updated")
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, requester *domain.User, id string) error {
	if !requester.IsAdmin() {
		return domain.ErrRoleForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapUnlessKind("delete client", err)
	}
	s.log.Info().Str("client_id", id).Str("admin_id", requester.ID).Msg("client deleted")
	return nil
}

func (s *ClientService) TouchContact(ctx context.Context, requester *domain.User, id string) (*domain.Client, error) {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	updated, err := s.repo.Update(ctx, id, ports.ClientPatch{LastContactAt: &now}, now)
	if err != nil {
		return nil, wrapUnlessKind("touch client", err)
	}
	return updated, nil
}

func (s *ClientService) FollowUps(ctx context.Context, owner *domain.User) ([]*domain.Client, error) {
	threshold := s.now().UTC().Add(-domain.FollowUpAfter)
	return s.list(ctx, ports.ClientFilter{OwnerID: owner.ID, ContactBefore: &threshold})
}

func (s *ClientService) OwnerStats(ctx context.Context, owner *domain.User) (*ports.OwnerStats, error) {
	total, err := s.repo.Count(ctx, ports.ClientCountFilter{OwnerID: owner.ID})
	if err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}
	byStatus, err := s.repo.CountBy(ctx, owner.ID, ports.GroupByStatus)
	if err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}
	byPriority, err := s.repo.CountBy(ctx, owner.ID, ports.GroupByPriority)
	if err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}
	return &ports.OwnerStats{Total: total, StatusCounts: byStatus, PriorityCounts: byPriority}, nil
}

// ensureEmailFree fails with ErrClientExists when ownerID already has a client
// with email other than exceptID. The unique index remains the final authority.
func (s *ClientService) ensureEmailFree(ctx context.Context, ownerID, email, exceptID string) error {
	existing, err := s.repo.FindByOwnerAndEmail(ctx, ownerID, email)
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check client email: %w", err)
	case existing.ID == exceptID:
		return nil
	}
	return domain.ErrClientExists
}

func canAccess(u *domain.User, c *domain.Client) bool {
	return c.OwnedBy(u.ID) || u.IsAdmin()
}

func listFilter(in ports.ListClientsInput) (ports.ClientFilter, error) {
	f := ports.ClientFilter{
		Query:    strings.TrimSpace(in.Query),
		Status:   domain.ClientStatus(in.Status),
		Priority: domain.ClientPriority(in.Priority),
	}
	verr := domain.NewValidationError("invalid client filter")
	if f.Status != "" {
		checkStatus(verr, f.Status)
	}
	if f.Priority != "" {
		checkPriority(verr, f.Priority)
	}
	return f, verr.OrNil()
}

func checkStatus(verr *domain.ValidationError, s domain.ClientStatus) {
	if !s.Valid() {
		verr.Add("status", "status must be one of prospect, active, inactive, customer")
	}
}

func checkPriority(verr *domain.ValidationError, p domain.ClientPriority) {
	if !p.Valid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
