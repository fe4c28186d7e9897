package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*domain.User
	clients *stubClientRepo // cascaded on Delete when set
	listErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	created, _ := r.Create(context.Background(), u)
	return created
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(u)
	c.ID = "u" + strconv.Itoa(r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) activeAdmins() int {
	n := 0
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin && u.Active {
			n++
		}
	}
	return n
}

func (r *stubUserRepo) guard(target *domain.User, revokes bool) error {
	if revokes && target.Role == domain.RoleAdmin && target.Active && r.activeAdmins() <= 1 {
		return domain.ErrSoleAdmin
	}
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := r.guard(u, p.RevokesAdmin()); err != nil {
		return nil, err
	}
	if p.Email != nil {
		for _, other := range r.users {
			if other.ID != id && other.Email == *p.Email {
				return nil, domain.ErrUserExists
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := r.guard(u, true); err != nil {
		return err
	}
	delete(r.users, id)
	if r.clients != nil {
		r.clients.deleteOwner(id)
	}
	return nil
}

func (r *stubUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = time.Time{}
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiresAt = expiresAt
	return nil
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && u.ResetTokenHash == tokenHash && u.ResetTokenExpiresAt.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) PurgeExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.ResetTokenHash != "" && !u.ResetTokenExpiresAt.After(now) {
			u.ResetTokenHash = ""
			u.ResetTokenExpiresAt = time.Time{}
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *stubUserRepo) Counts(context.Context) (ports.UserCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c ports.UserCounts
	for _, u := range r.users {
		c.Total++
		if u.Active {
			c.Active++
		}
	}
	c.Admins = int64(r.activeAdmins())
	return c, nil
}

// ---------------------------------------------------------------------------
// In-memory client repository
// ---------------------------------------------------------------------------

type stubClientRepo struct {
	mu       sync.Mutex
	seq      int
	clients  map[string]*domain.Client
	countErr error
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[string]*domain.Client)}
}

func cloneClient(c *domain.Client) *domain.Client {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Tags = append([]string(nil), c.Tags...)
	return &clone
}

func (r *stubClientRepo) deleteOwner(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		if c.OwnerID == ownerID {
			delete(r.clients, id)
		}
	}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.OwnerID == c.OwnerID && existing.Email == c.Email {
			return nil, domain.ErrClientExists
		}
	}
	r.seq++
	stored := cloneClient(c)
	stored.ID = "c" + strconv.Itoa(r.seq)
	r.clients[stored.ID] = stored
	return cloneClient(stored), nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return cloneClient(c), nil
}

func (r *stubClientRepo) FindByOwnerAndEmail(_ context.Context, ownerID, email string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.OwnerID == ownerID && c.Email == email {
			return cloneClient(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) List(_ context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Client
	for _, c := range r.clients {
		if f.OwnerID != "" && c.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			hay := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Email + " " + c.Company)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		if f.ContactBefore != nil && c.LastContactAt != nil && !c.LastContactAt.Before(*f.ContactBefore) {
			continue
		}
		out = append(out, cloneClient(c))
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, id string, p ports.ClientPatch, now time.Time) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	if p.Email != nil {
		for _, other := range r.clients {
			if other.ID != id && other.OwnerID == c.OwnerID && other.Email == *p.Email {
				return nil, domain.ErrClientExists
			}
		}
		c.Email = *p.Email
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.FirstName, p.FirstName)
	set(&c.LastName, p.LastName)
	set(&c.Phone, p.Phone)
	set(&c.Address, p.Address)
	set(&c.Company, p.Company)
	set(&c.Notes, p.Notes)
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.LastContactAt != nil {
		t := *p.LastContactAt
		c.LastContactAt = &t
	}
	c.UpdatedAt = now
	return cloneClient(c), nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) Count(_ context.Context, f ports.ClientCountFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, c := range r.clients {
		if f.OwnerID != "" && c.OwnerID != f.OwnerID {
			continue
		}
		if !f.CreatedFrom.IsZero() && c.CreatedAt.Before(f.CreatedFrom) {
			continue
		}
		if !f.CreatedBefore.IsZero() && !c.CreatedAt.Before(f.CreatedBefore) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubClientRepo) CountBy(_ context.Context, ownerID string, field ports.ClientGroupField) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for _, c := range r.clients {
		if ownerID != "" && c.OwnerID != ownerID {
			continue
		}
		switch field {
		case ports.GroupByStatus:
			out[string(c.Status)]++
		case ports.GroupByPriority:
			out[string(c.Priority)]++
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubDenylist struct {
	revoked map[string]time.Time
	err     error
}

func (d *stubDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	if d.err != nil {
		return d.err
	}
	if d.revoked == nil {
		d.revoked = make(map[string]time.Time)
	}
	d.revoked[id] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := d.revoked[id]
	return ok, d.err
}

type stubLimiter struct {
	max      int
	failures map[string]int
	allowErr error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{max: max, failures: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.allowErr != nil {
		return false, l.allowErr
	}
	return l.failures[key] < l.max, nil
}

func (l *stubLimiter) Fail(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	return nil
}

type stubNotifier struct {
	sent []ports.Notification
}

func (n *stubNotifier) Enqueue(msg ports.Notification) bool {
	n.sent = append(n.sent, msg)
	return true
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
