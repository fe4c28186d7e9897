package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// openTestDB connects to MONGO_TEST_URI, which must point at a replica set.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, db, err := Connect(ctx, Config{
		URI:      uri,
		Database: fmt.Sprintf("crm_test_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureSchema(ctx, db))
	return db
}

func seedUser(t *testing.T, repo *UserRepository, email string, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := repo.Create(context.Background(), &domain.User{
		Email: email, Role: role, Active: true, PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_Live(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice@example.com", domain.RoleUser)
	_, err := repo.Create(ctx, &domain.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = repo.FindByID(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	expires := time.Now().UTC().Add(10 * time.Minute)
	require.NoError(t, repo.SetResetToken(ctx, alice.ID, "hash", expires))
	byToken, err := repo.FindByResetToken(ctx, "hash", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byToken.ID)

	n, err := repo.PurgeExpiredResetTokens(ctx, expires.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = repo.FindByResetToken(ctx, "hash", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_SoleAdminGuard_Live(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := seedUser(t, repo, "a@example.com", domain.RoleAdmin)
	b := seedUser(t, repo, "b@example.com", domain.RoleAdmin)
	demote := domain.RoleUser

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = repo.Update(ctx, id, ports.UserPatch{Role: &demote})
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrSoleAdmin), "unexpected error: %v", err)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one concurrent demotion must be refused")

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Admins)
}

func TestUserRepository_DeleteCascades_Live(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	clients := NewClientRepository(db)
	ctx := context.Background()

	seedUser(t, users, "root@example.com", domain.RoleAdmin)
	alice := seedUser(t, users, "alice@example.com", domain.RoleUser)
	_, err := clients.Create(ctx, &domain.Client{OwnerID: alice.ID, Email: "x@y.com", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, alice.ID))

	n, err := clients.Count(ctx, ports.ClientCountFilter{OwnerID: alice.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClientRepository_Live(t *testing.T) {
	db := openTestDB(t)
	repo := NewClientRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	c, err := repo.Create(ctx, &domain.Client{
		OwnerID: "u1", FirstName: "Jane", LastName: "Roe", Email: "x@y.com",
		Status: domain.ClientProspect, Priority: domain.PriorityHigh, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Client{OwnerID: "u1", Email: "x@y.com"})
	assert.ErrorIs(t, err, domain.ErrClientExists)
	_, err = repo.Create(ctx, &domain.Client{OwnerID: "u2", Email: "x@y.com", Status: domain.ClientCustomer})
	require.NoError(t, err)

	list, err := repo.List(ctx, ports.ClientFilter{OwnerID: "u1", Query: "JANE"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	company := "Acme"
	updated, err := repo.Update(ctx, c.ID, ports.ClientPatch{Company: &company}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, "Jane", updated.FirstName)

	byStatus, err := repo.CountBy(ctx, "", ports.GroupByStatus)
	require.NoError(t, err)
	assert.EqualValues(t, 1, byStatus["prospect"])
	assert.EqualValues(t, 1, byStatus["customer"])

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), domain.ErrClientNotFound)
}
