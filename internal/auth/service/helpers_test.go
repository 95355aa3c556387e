package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/aussiebroadwan/tabgate/pkg/kvx/kvxtest"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("service-test-secret-at-least-32-bytes")

type fixture struct {
	auth   *AuthService
	users  *UserService
	kv     *kvxtest.Memory
	signer *jwtx.HS256Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256Signer(testSecret, "tabgate", 30*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	verifier := jwtx.NewHS256Verifier(testSecret, "tabgate")

	kv := kvxtest.NewMemory()
	hasher := cryptox.PasswordHasher{Pepper: "pepper"}

	return &fixture{
		auth: &AuthService{
			Store:       st,
			Tokens:      &TokenService{Signer: signer},
			Verifier:    verifier,
			Revocations: NewRevocationService(kv, slogx.Discard()),
			Hasher:      hasher,
		},
		users:  &UserService{Store: st, Hasher: hasher},
		kv:     kv,
		signer: signer,
	}
}

func (f *fixture) createUser(t *testing.T, email, password string, role domain.Role) domain.User {
	t.Helper()

	u, err := f.users.Create(t.Context(), NewUser{
		Name:     "Test " + string(role),
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}
