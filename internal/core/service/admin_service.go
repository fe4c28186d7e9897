package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// AdminService manages user accounts for administrators. The last active
// administrator is protected by the repository.
type AdminService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewAdminService(users ports.UserRepository, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, log: log}
}

var _ ports.AdminService = (*AdminService)(nil)

func (s *AdminService) ListUsers(ctx context.Context, admin *domain.User) ([]*domain.User, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrRoleForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

func (s *AdminService) GetUser(ctx context.Context, admin *domain.User, id string) (*domain.User, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrRoleForbidden
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessKind("get user", err)
	}
	return u.Sanitized(), nil
}

func (s *AdminService) UpdateRole(ctx context.Context, admin *domain.User, id, role string) (*domain.User, error) {
	return s.UpdateUser(ctx, admin, id, ports.UpdateUserInput{Role: &role})
}

func (s *AdminService) UpdateUser(ctx context.Context, admin *domain.User, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrRoleForbidden
	}

	verr := domain.NewValidationError("invalid user update")
	if in.Password != nil {
		verr.Add("password", "password cannot be changed here")
	}

	patch := ports.UserPatch{Active: in.Active}
	if in.Role != nil {
		r, ok := domain.ParseRole(*in.Role)
		if !ok {
			verr.Add("role", "role must be one of user, admin")
		}
		patch.Role = &r
	}
	if in.Email != nil {
		v := normalizeEmail(*in.Email)
		checkEmail(verr, "email", v)
		patch.Email = &v
	}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		checkMaxLen(verr, "name", v, 50)
		patch.Name = &v
	}
	if in.Phone != nil {
		v := strings.TrimSpace(*in.Phone)
		checkMaxLen(verr, "phone", v, 20)
		patch.Phone = &v
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return s.GetUser(ctx, admin, id)
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, wrapUnlessKind("update user", err)
	}

	ev := s.log.Info().Str("user_id", id).Str("admin_id", admin.ID)
	if patch.Role != nil {
		ev = ev.Str("role", string(*patch.Role))
	}
	if patch.Active != nil {
		ev = ev.Bool("active", *patch.Active)
	}
	ev.Msg("user updated")
	return updated.Sanitized(), nil
}

func (s *AdminService) DeleteUser(ctx context.Context, admin *domain.User, id string) error {
	if !admin.IsAdmin() {
		return domain.ErrRoleForbidden
	}
	if id == admin.ID {
		return domain.NewValidationError("cannot delete self")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return wrapUnlessKind("delete user", err)
	}
	s.log.Info().Str("user_id", id).Str("admin_id", admin.ID).Msg("user deleted")
	return nil
}
