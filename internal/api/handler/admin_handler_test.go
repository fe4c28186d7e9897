package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

func TestAdminHandler_ListUsers(t *testing.T) {
	admin := &stubAdminService{
		listFn: func(context.Context, *domain.User) ([]*domain.User, error) {
			return []*domain.User{alice, root}, nil
		},
	}
	h := NewAdminHandler(admin, &stubClientService{}, &stubStatsService{})

	c, rec := newContext(http.MethodGet, "/admin/users", "")
	signIn(t, c, root)
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Results != 2 || len(resp.Users) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_UpdateUser_ForwardsFields(t *testing.T) {
	admin := &stubAdminService{
		updateFn: func(_ context.Context, actor *domain.User, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if actor.ID != root.ID || id != alice.ID {
				t.Fatalf("unexpected actor/target: %s %s", actor.ID, id)
			}
			if in.Role == nil || *in.Role != "admin" || in.Active == nil || *in.Active {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Password != nil || in.Name != nil {
				t.Fatalf("absent fields must stay nil: %+v", in)
			}
			return &domain.User{ID: id, Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAdminHandler(admin, &stubClientService{}, &stubStatsService{})

	c, rec := newContext(http.MethodPut, "/admin/users/"+alice.ID, `{"role":"admin","active":false}`)
	c.SetParamNames("id")
	c.SetParamValues(alice.ID)
	signIn(t, c, root)
	if err := h.UpdateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminHandler_UpdateUser_PasswordReachesService(t *testing.T) {
	admin := &stubAdminService{
		updateFn: func(_ context.Context, _ *domain.User, _ string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Password == nil {
				t.Fatal("password must be forwarded so the service can reject it")
			}
			verr := domain.NewValidationError("invalid request")
			verr.Add("password", "password cannot be changed by an administrator")
			return nil, verr
		},
	}
	h := NewAdminHandler(admin, &stubClientService{}, &stubStatsService{})

	c, _ := newContext(http.MethodPut, "/admin/users/"+alice.ID, `{"password":"hunter22"}`)
	c.SetParamNames("id")
	c.SetParamValues(alice.ID)
	signIn(t, c, root)
	if err := h.UpdateUser(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminHandler_UpdateRole(t *testing.T) {
	admin := &stubAdminService{
		updateRoleFn: func(_ context.Context, _ *domain.User, id, role string) (*domain.User, error) {
			if id != root.ID || role != "user" {
				t.Fatalf("unexpected args: %s %s", id, role)
			}
			return nil, domain.ErrSoleAdmin
		},
	}
	h := NewAdminHandler(admin, &stubClientService{}, &stubStatsService{})

	c, _ := newContext(http.MethodPut, "/admin/users/"+root.ID+"/role", `{"role":"user"}`)
	c.SetParamNames("id")
	c.SetParamValues(root.ID)
	signIn(t, c, root)
	if err := h.UpdateRole(c); err != domain.ErrSoleAdmin {
		t.Fatalf("expected ErrSoleAdmin, got %v", err)
	}
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	var deleted string
	admin := &stubAdminService{
		deleteFn: func(_ context.Context, _ *domain.User, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewAdminHandler(admin, &stubClientService{}, &stubStatsService{})

	c, rec := newContext(http.MethodDelete, "/admin/users/"+alice.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(alice.ID)
	signIn(t, c, root)
	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != alice.ID {
		t.Fatalf("unexpected result: code=%d deleted=%q", rec.Code, deleted)
	}
}

func TestAdminHandler_ListClients_AcrossOwners(t *testing.T) {
	clients := &stubClientService{
		listAllFn: func(_ context.Context, actor *domain.User, in ports.ListClientsInput) ([]*domain.Client, error) {
			if actor.ID != root.ID || in.Priority != "high" {
				t.Fatalf("unexpected call: %s %+v", actor.ID, in)
			}
			return []*domain.Client{{ID: "c1", OwnerID: alice.ID}, {ID: "c2", OwnerID: "u-bob"}}, nil
		},
	}
	h := NewAdminHandler(&stubAdminService{}, clients, &stubStatsService{})

	c, rec := newContext(http.MethodGet, "/admin/clients?priority=high", "")
	signIn(t, c, root)
	if err := h.ListClients(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp clientListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Results != 2 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	stats := &stubStatsService{
		clientStats: &ports.ClientStats{TotalClients: 7, NewClientsThisMonth: 2, ClientsByStatus: map[string]int64{"active": 7}},
		userStats:   &ports.UserStats{TotalUsers: 3, ActiveUsers: 2, AdminUsers: 1},
	}
	h := NewAdminHandler(&stubAdminService{}, &stubClientService{}, stats)

	c, rec := newContext(http.MethodGet, "/admin/stats/clients", "")
	if err := h.ClientStats(c); err != nil {
		t.Fatalf("client stats: %v", err)
	}
	var cs map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &cs); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if cs["totalClients"] != float64(7) || cs["newClientsThisMonth"] != float64(2) {
		t.Fatalf("unexpected client stats: %+v", cs)
	}

	c, rec = newContext(http.MethodGet, "/admin/stats/users", "")
	if err := h.UserStats(c); err != nil {
		t.Fatalf("user stats: %v", err)
	}
	var us map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &us); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if us["adminUsers"] != float64(1) || us["activeUsers"] != float64(2) {
		t.Fatalf("unexpected user stats: %+v", us)
	}
}

func TestAdminHandler_Stats_StorageFailure(t *testing.T) {
	boom := errors.New("aggregate failed")
	h := NewAdminHandler(&stubAdminService{}, &stubClientService{}, &stubStatsService{err: boom})

	c, _ := newContext(http.MethodGet, "/admin/stats/clients", "")
	if err := h.ClientStats(c); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
