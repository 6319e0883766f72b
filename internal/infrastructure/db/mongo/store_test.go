package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// Requires a replica set, e.g. mongodb://localhost:27017/?replicaSet=rs0.
func TestStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	client, db, err := Connect(ctx, Config{URI: uri, Database: fmt.Sprintf("rbac_test_%d", time.Now().UnixNano())})
	require.NoError(t, err)
	store := NewStore(client, db)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = store.Close(ctx)
	})

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "migrate must be repeatable")

	var userID int64
	require.NoError(t, store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		role := &domain.Role{Name: "editor"}
		if err := r.Roles().Create(ctx, role); err != nil {
			return err
		}
		user := &domain.User{Email: "alice@example.com", PasswordHash: "h", IsActive: true, RoleID: &role.ID}
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		userID = user.ID
		return r.Permissions().Create(ctx, &domain.Permission{RoleID: role.ID, Resource: "items", Action: "read"})
	}))

	require.NoError(t, store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users().FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, userID, u.ID)
		require.NotNil(t, u.Role)
		assert.Equal(t, "editor", u.Role.Name)

		ok, err := r.Permissions().Exists(ctx, *u.RoleID, "items", "read")
		require.NoError(t, err)
		assert.True(t, ok)

		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		return nil
	}))

	err = store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return r.Users().Create(ctx, &domain.User{Email: "alice@example.com", PasswordHash: "x"})
	})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	require.NoError(t, store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		assert.ErrorIs(t, r.Roles().Create(ctx, &domain.Role{Name: "editor"}), domain.ErrRoleExists)
		return r.Roles().Create(ctx, &domain.Role{Name: "viewer"})
	}), "duplicate role must not abort the transaction")
}
