package service

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	created := f.createUser(t, "alice@example.com", "correct horse", domain.RoleAdmin)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "correct horse", nil},
		{"email is case insensitive", "  Alice@Example.COM ", "correct horse", nil},
		{"wrong password", "alice@example.com", "battery staple", ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "correct horse", ErrInvalidCredentials},
		{"empty password", "alice@example.com", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, pair, err := f.auth.Login(t.Context(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, pair.Access.Token)
				return
			}

			require.NoError(t, err)
			require.Equal(t, created.ID, u.ID)
			require.Empty(t, u.PasswordHash)

			access, err := jwtx.VerifyAccess(f.auth.Verifier, pair.Access.Token)
			require.NoError(t, err)
			require.Equal(t, created.ID, access.Subject)
			require.Equal(t, "admin", access.Role)

			refresh, err := jwtx.VerifyRefresh(f.auth.Verifier, pair.Refresh.Token)
			require.NoError(t, err)
			require.NotEqual(t, access.JTI, refresh.JTI)
			require.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt))
		})
	}
}

func TestRefresh_Rotation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.createUser(t, "carol@example.com", "password-1", domain.RoleUser)

	_, first, err := f.auth.Login(ctx, "carol@example.com", "password-1")
	require.NoError(t, err)

	second, err := f.auth.Refresh(ctx, first.Refresh.Token)
	require.NoError(t, err)
	require.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	old, err := jwtx.VerifyRefresh(f.auth.Verifier, first.Refresh.Token)
	require.NoError(t, err)
	require.True(t, f.auth.Revocations.IsRevoked(ctx, old.JTI))

	_, err = f.auth.Refresh(ctx, first.Refresh.Token)
	require.ErrorIs(t, err, ErrInvalidRefresh, "a refresh token is single use")

	_, err = f.auth.Refresh(ctx, second.Refresh.Token)
	require.NoError(t, err)
}

func TestRefresh_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.createUser(t, "dan@example.com", "password-1", domain.RoleUser)

	_, pair, err := f.auth.Login(ctx, "dan@example.com", "password-1")
	require.NoError(t, err)

	ghost, err := f.signer.Issue("01HZZZZZZZZZZZZZZZZZZZZZZZ", "user")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"access token", pair.Access.Token},
		{"unknown subject", ghost.Refresh.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Refresh(ctx, tt.token)
			require.ErrorIs(t, err, ErrInvalidRefresh)
		})
	}
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	u := f.createUser(t, "erin@example.com", "password-1", domain.RoleUser)

	_, pair, err := f.auth.Login(ctx, "erin@example.com", "password-1")
	require.NoError(t, err)

	_, err = f.users.ChangeRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)

	// The outstanding access token keeps the old role until it expires.
	stale, err := jwtx.VerifyAccess(f.auth.Verifier, pair.Access.Token)
	require.NoError(t, err)
	require.Equal(t, "user", stale.Role)

	next, err := f.auth.Refresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)

	fresh, err := jwtx.VerifyAccess(f.auth.Verifier, next.Access.Token)
	require.NoError(t, err)
	require.Equal(t, "admin", fresh.Role)
}

func TestRefresh_ConcurrentReuse(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.createUser(t, "frank@example.com", "password-1", domain.RoleUser)

	_, pair, err := f.auth.Login(ctx, "frank@example.com", "password-1")
	require.NoError(t, err)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.auth.Refresh(ctx, pair.Refresh.Token); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
}

func TestRefresh_StoreErrorFailsOpen(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.createUser(t, "gina@example.com", "password-1", domain.RoleUser)

	_, pair, err := f.auth.Login(ctx, "gina@example.com", "password-1")
	require.NoError(t, err)

	f.kv.Fail = true
	_, err = f.auth.Refresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.createUser(t, "hank@example.com", "password-1", domain.RoleUser)

	_, pair, err := f.auth.Login(ctx, "hank@example.com", "password-1")
	require.NoError(t, err)

	access, err := jwtx.VerifyAccess(f.auth.Verifier, pair.Access.Token)
	require.NoError(t, err)

	f.auth.Logout(ctx, pair.Access.Token)
	require.True(t, f.auth.Revocations.IsRevoked(ctx, access.JTI))

	ttl := f.kv.TTLs[BlacklistPrefix+access.JTI]
	require.Greater(t, ttl, 29*time.Minute)
	require.LessOrEqual(t, ttl, 30*time.Minute)

	// Repeated and junk logouts are silent.
	f.auth.Logout(ctx, pair.Access.Token)
	f.auth.Logout(ctx, "")
	f.auth.Logout(ctx, "garbage")

	// A refresh token is not accepted as the access token to revoke.
	refresh, err := jwtx.VerifyRefresh(f.auth.Verifier, pair.Refresh.Token)
	require.NoError(t, err)
	f.auth.Logout(ctx, pair.Refresh.Token)
	require.False(t, f.auth.Revocations.IsRevoked(ctx, refresh.JTI))

	f.kv.Fail = true
	f.auth.Logout(ctx, pair.Access.Token)
}
