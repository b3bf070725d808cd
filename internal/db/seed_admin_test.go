package db_test

import (
	"context"
	"testing"

	"github.com/getlocalbuddy/backend/internal/config"
	"github.com/getlocalbuddy/backend/internal/db"
	"github.com/getlocalbuddy/backend/internal/repo/memory"
	"github.com/getlocalbuddy/backend/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	store := memory.NewStore("https://i.pravatar.cc/150?u={id}")
	ctx := context.Background()

	cfg := config.Config{
		AdminEmail:    " Admin@Example.com ",
		AdminPassword: "admin-pass",
		AdminName:     "Admin",
		AdminRole:     "admin",
	}

	created, err := db.EnsureAdminUser(ctx, store, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := store.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "Admin", u.Name)
	assert.NoError(t, security.CheckPassword(u.PasswordHash, "admin-pass"))

	created, err = db.EnsureAdminUser(ctx, store, cfg)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureAdminUser_DisabledWithoutCredentials(t *testing.T) {
	store := memory.NewStore("")

	created, err := db.EnsureAdminUser(context.Background(), store, config.Config{AdminEmail: "admin@example.com"})

	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureAdminUser_PropagatesStoreFailure(t *testing.T) {
	store := memory.NewStore("")
	store.Disconnect()

	_, err := db.EnsureAdminUser(context.Background(), store, config.Config{AdminEmail: "a@b.co", AdminPassword: "x"})

	assert.ErrorIs(t, err, memory.ErrUnavailable)
}
