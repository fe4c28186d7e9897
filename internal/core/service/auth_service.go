package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

const (
	defaultMinPassword = 6
	defaultResetTTL    = 10 * time.Minute
	resetTokenBytes    = 32
)

// AuthOptions tunes AuthService. Zero values fall back to defaults; nil
// collaborators disable the feature they back.
type AuthOptions struct {
	MinPasswordLength int
	BcryptCost        int
	ResetTokenTTL     time.Duration

	Denylist ports.TokenDenylist
	Limiter  ports.LoginLimiter
	Notifier ports.Notifier

	Now func() time.Time
}

// AuthService implements registration, login and self-service account changes.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenService
	opts   AuthOptions
	log    zerolog.Logger

	// compared against on unknown emails so every login costs one bcrypt round
	dummyHash []byte
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = defaultMinPassword
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = defaultResetTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), opts.BcryptCost)
	return &AuthService{users: users, tokens: tokens, opts: opts, log: log, dummyHash: dummy}
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	verr := domain.NewValidationError("invalid registration")
	checkEmail(verr, "email", email)
	checkPassword(verr, "password", in.Password, s.opts.MinPasswordLength)
	checkMaxLen(verr, "name", name, 50)
	checkMaxLen(verr, "phone", phone, 20)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.opts.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return s.issue(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.opts.Limiter != nil {
		allowed, err := s.opts.Limiter.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, s.loginFailed(ctx, email, "unknown email")
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.loginFailed(ctx, email, "wrong password")
	}
	if !user.Active {
		return nil, s.loginFailed(ctx, email, "account deactivated")
	}

	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login attempts")
		}
	}

	now := s.opts.Now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return s.issue(user)
}

func (s *AuthService) loginFailed(ctx context.Context, email, reason string) error {
	s.log.Info().Str("reason", reason).Msg("login rejected")
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Fail(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login attempt")
		}
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user.Sanitized()}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, in ports.ProfileInput) (*domain.User, error) {
	verr := domain.NewValidationError("invalid profile")
	patch := ports.UserPatch{}
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
		return user.Sanitized(), nil
	}

	updated, err := s.users.Update(ctx, user.ID, patch)
	if err != nil {
		return nil, wrapUnlessKind("update profile", err)
	}
	return updated.Sanitized(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	// the authenticated user is sanitized, so reload the stored hash
	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return wrapUnlessKind("change password", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	verr := domain.NewValidationError("invalid password")
	checkPassword(verr, "newPassword", next, s.opts.MinPasswordLength)
	if err := verr.OrNil(); err != nil {
		return err
	}

	if err := s.setPassword(ctx, stored.ID, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.log.Info().Str("user_id", stored.ID).Msg("password changed")
	return nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Msg("password reset requested for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("forgot password: %w", err)
	}
	if !user.Active {
		s.log.Debug().Str("user_id", user.ID).Msg("password reset requested for inactive account")
		return "", nil
	}

	raw, err := newResetToken()
	if err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}
	expiresAt := s.opts.Now().UTC().Add(s.opts.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(raw), expiresAt); err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}

	if s.opts.Notifier != nil {
		queued := s.opts.Notifier.Enqueue(ports.Notification{
			To:      user.Email,
			Subject: "Password reset",
			Body: fmt.Sprintf("Use this code to reset your password: %s\nIt expires in %s.",
				raw, s.opts.ResetTokenTTL),
		})
		if !queued {
			s.log.Warn().Str("user_id", user.ID).Msg("password reset notification dropped")
		}
	}

	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiresAt).Msg("password reset token issued")
	return raw, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	verr := domain.NewValidationError("invalid password reset")
	checkRequired(verr, "token", token)
	checkPassword(verr, "password", password, s.opts.MinPasswordLength)
	if err := verr.OrNil(); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, hashResetToken(token), s.opts.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.NewValidationError("reset token invalid or expired")
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if err := s.setPassword(ctx, user.ID, password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPasswordHash(ctx, userID, string(hash))
}

func (s *AuthService) Logout(ctx context.Context, claims *ports.TokenClaims) error {
	if s.opts.Denylist == nil || claims == nil {
		return nil
	}
	if err := s.opts.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("token revoked")
	return nil
}

func (s *AuthService) Deactivate(ctx context.Context, user *domain.User) error {
	inactive := false
	if _, err := s.users.Update(ctx, user.ID, ports.UserPatch{Active: &inactive}); err != nil {
		return wrapUnlessKind("deactivate", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("account deactivated")
	return nil
}

// EnsureAdmin makes sure an active administrator with the given email exists.
// A missing account is created with password; an existing one is promoted and
// reactivated, keeping its current password. It reports whether anything changed.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin && existing.Active {
			return false, nil
		}
		role, active := domain.RoleAdmin, true
		if _, err := s.users.Update(ctx, existing.ID, ports.UserPatch{Role: &role, Active: &active}); err != nil {
			return false, wrapUnlessKind("ensure admin", err)
		}
		s.log.Info().Str("user_id", existing.ID).Msg("existing account promoted to admin")
		return true, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	verr := domain.NewValidationError("invalid admin seed")
	checkEmail(verr, "email", email)
	checkPassword(verr, "password", password, s.opts.MinPasswordLength)
	if err := verr.OrNil(); err != nil {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("ensure admin: hash password: %w", err)
	}
	now := s.opts.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, wrapUnlessKind("ensure admin", err)
	}
	s.log.Info().Str("user_id", created.ID).Msg("admin account seeded")
	return true, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// wrapUnlessKind adds op context to infrastructure failures and passes domain
// errors through untouched.
func wrapUnlessKind(op string, err error) error {
	if kind, _ := domain.Describe(err); kind != nil {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
