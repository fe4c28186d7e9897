package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/api/middleware"
	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
	"github.com/clientespro/client-manager/internal/core/service"
)

// --- services ---

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	updateProfileFn  func(ctx context.Context, user *domain.User, in ports.ProfileInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, user *domain.User, current, next string) error
	forgotFn         func(ctx context.Context, email string) (string, error)
	resetFn          func(ctx context.Context, token, password string) error
	logoutFn         func(ctx context.Context, claims *ports.TokenClaims) error
	deactivateFn     func(ctx context.Context, user *domain.User) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, user *domain.User, in ports.ProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, user, in)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	return s.changePasswordFn(ctx, user, current, next)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password string) error {
	return s.resetFn(ctx, token, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *ports.TokenClaims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) Deactivate(ctx context.Context, user *domain.User) error {
	return s.deactivateFn(ctx, user)
}

type stubClientService struct {
	createFn    func(ctx context.Context, owner *domain.User, in ports.CreateClientInput) (*domain.Client, error)
	listFn      func(ctx context.Context, owner *domain.User, in ports.ListClientsInput) ([]*domain.Client, error)
	listAllFn   func(ctx context.Context, admin *domain.User, in ports.ListClientsInput) ([]*domain.Client, error)
	getFn       func(ctx context.Context, requester *domain.User, id string) (*domain.Client, error)
	updateFn    func(ctx context.Context, requester *domain.User, id string, in ports.UpdateClientInput) (*domain.Client, error)
	deleteFn    func(ctx context.Context, requester *domain.User, id string) error
	touchFn     func(ctx context.Context, requester *domain.User, id string) (*domain.Client, error)
	followUpsFn func(ctx context.Context, owner *domain.User) ([]*domain.Client, error)
	statsFn     func(ctx context.Context, owner *domain.User) (*ports.OwnerStats, error)
}

func (s *stubClientService) Create(ctx context.Context, owner *domain.User, in ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubClientService) List(ctx context.Context, owner *domain.User, in ports.ListClientsInput) ([]*domain.Client, error) {
	return s.listFn(ctx, owner, in)
}

func (s *stubClientService) ListAll(ctx context.Context, admin *domain.User, in ports.ListClientsInput) ([]*domain.Client, error) {
	return s.listAllFn(ctx, admin, in)
}

func (s *stubClientService) Get(ctx context.Context, requester *domain.User, id string) (*domain.Client, error) {
	return s.getFn(ctx, requester, id)
}

func (s *stubClientService) Update(ctx context.Context, requester *domain.User, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, requester, id, in)
}

func (s *stubClientService) Delete(ctx context.Context, requester *domain.User, id string) error {
	return s.deleteFn(ctx, requester, id)
}

func (s *stubClientService) TouchContact(ctx context.Context, requester *domain.User, id string) (*domain.Client, error) {
	return s.touchFn(ctx, requester, id)
}

func (s *stubClientService) FollowUps(ctx context.Context, owner *domain.User) ([]*domain.Client, error) {
	return s.followUpsFn(ctx, owner)
}

func (s *stubClientService) OwnerStats(ctx context.Context, owner *domain.User) (*ports.OwnerStats, error) {
	return s.statsFn(ctx, owner)
}

type stubAdminService struct {
	listFn       func(ctx context.Context, admin *domain.User) ([]*domain.User, error)
	getFn        func(ctx context.Context, admin *domain.User, id string) (*domain.User, error)
	updateFn     func(ctx context.Context, admin *domain.User, id string, in ports.UpdateUserInput) (*domain.User, error)
	updateRoleFn func(ctx context.Context, admin *domain.User, id, role string) (*domain.User, error)
	deleteFn     func(ctx context.Context, admin *domain.User, id string) error
}

func (s *stubAdminService) ListUsers(ctx context.Context, admin *domain.User) ([]*domain.User, error) {
	return s.listFn(ctx, admin)
}

func (s *stubAdminService) GetUser(ctx context.Context, admin *domain.User, id string) (*domain.User, error) {
	return s.getFn(ctx, admin, id)
}

func (s *stubAdminService) UpdateUser(ctx context.Context, admin *domain.User, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, admin, id, in)
}

func (s *stubAdminService) UpdateRole(ctx context.Context, admin *domain.User, id, role string) (*domain.User, error) {
	return s.updateRoleFn(ctx, admin, id, role)
}

func (s *stubAdminService) DeleteUser(ctx context.Context, admin *domain.User, id string) error {
	return s.deleteFn(ctx, admin, id)
}

type stubStatsService struct {
	clientStats *ports.ClientStats
	userStats   *ports.UserStats
	err         error
}

func (s *stubStatsService) ClientStats(context.Context) (*ports.ClientStats, error) {
	return s.clientStats, s.err
}

func (s *stubStatsService) UserStats(context.Context) (*ports.UserStats, error) {
	return s.userStats, s.err
}

// --- request helpers ---

var (
	alice = &domain.User{ID: "u-alice", Email: "alice@example.com", Role: domain.RoleUser, Active: true}
	root  = &domain.User{ID: "u-root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true}
)

type userFinder map[string]*domain.User

func (f userFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// newContext builds an echo.Context for a request with an optional JSON body.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// signIn runs the real auth gate for user so the handler sees the same
// identity it would in production.
func signIn(t *testing.T, c echo.Context, user *domain.User) {
	t.Helper()
	tokens := service.NewTokenService("handler-test-secret", time.Hour, nil)
	raw, _, err := tokens.Issue(user.ID, user.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+raw)

	gate := middleware.NewGate(tokens, nil, userFinder{user.ID: user}, zerolog.Nop())
	if err := gate.Authenticate(func(echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
}
