package service

import (
	"testing"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u, err := f.users.Create(ctx, NewUser{Name: "Ivy", Email: " IVY@example.com", Password: "pw-123456"})
	require.NoError(t, err)
	require.Equal(t, "ivy@example.com", u.Email)
	require.Equal(t, domain.RoleUser, u.Role, "role defaults to user")
	require.Empty(t, u.PasswordHash)
	require.NotEmpty(t, u.ID)

	_, err = f.users.Create(ctx, NewUser{Name: "Ivy 2", Email: "ivy@example.com", Password: "pw-123456"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.users.Create(ctx, NewUser{Name: "Root", Email: "root@example.com", Password: "pw", Role: "root"})
	require.ErrorIs(t, err, ErrInvalidRole)

	got, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = f.users.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	u := f.createUser(t, "jay@example.com", "old-password", domain.RoleUser)

	err := f.users.ChangePassword(ctx, u.ID, "wrong", "new-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.users.ChangePassword(ctx, u.ID, "old-password", "new-password"))

	_, _, err = f.auth.Login(ctx, "jay@example.com", "old-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, "jay@example.com", "new-password")
	require.NoError(t, err)

	err = f.users.ChangePassword(ctx, "missing", "a", "b")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	u := f.createUser(t, "kim@example.com", "password-1", domain.RoleUser)

	got, err := f.users.ChangeRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)

	_, err = f.users.ChangeRole(ctx, u.ID, "owner")
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.users.ChangeRole(ctx, "missing", domain.RoleUser)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestBootstrap_SeedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	b := &BootstrapService{
		Store:         f.auth.Store,
		Hasher:        f.auth.Hasher,
		AdminName:     "Super Admin",
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "password123",
	}

	res, err := b.SeedAdmin(ctx)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, domain.RoleAdmin, res.User.Role)
	require.Empty(t, res.GeneratedPassword)

	res, err = b.SeedAdmin(ctx)
	require.NoError(t, err)
	require.False(t, res.Created, "seeding is a no-op once users exist")

	u, _, err := f.auth.Login(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
}

func TestBootstrap_GeneratesPassword(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	b := &BootstrapService{
		Store:      f.auth.Store,
		Hasher:     f.auth.Hasher,
		AdminName:  "Super Admin",
		AdminEmail: "admin@example.com",
	}

	res, err := b.SeedAdmin(ctx)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Len(t, res.GeneratedPassword, 16)

	_, _, err = f.auth.Login(ctx, "admin@example.com", res.GeneratedPassword)
	require.NoError(t, err)
}
