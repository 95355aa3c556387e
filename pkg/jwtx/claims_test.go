package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	c := newClaims("issuer", "user-1", "admin", TypeAccess, time.Minute, now)
	require.Equal(t, "issuer", c.Issuer)
	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, TypeAccess, c.Type)
	require.Equal(t, now.Add(time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)

	other := newClaims("issuer", "user-1", "admin", TypeAccess, time.Minute, now)
	require.NotEqual(t, c.ID, other.ID, "every token gets its own jti")
}

func TestClaimsToToken(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		claims  Claims
		want    TokenType
		wantErr bool
	}{
		{
			name: "access",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ID: "j", ExpiresAt: exp},
				Role:             "user",
				Type:             TypeAccess,
			},
			want: TypeAccess,
		},
		{
			name: "refresh",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ID: "j", ExpiresAt: exp},
				Type:             TypeRefresh,
			},
			want: TypeRefresh,
		},
		{
			name: "access without role",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ID: "j", ExpiresAt: exp},
				Type:             TypeAccess,
			},
			wantErr: true,
		},
		{
			name: "missing jti",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp},
				Type:             TypeRefresh,
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{ID: "j", ExpiresAt: exp},
				Type:             TypeRefresh,
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ID: "j", ExpiresAt: exp},
				Type:             "id",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tt.claims.toToken()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidClaim)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, tok.Type())
			require.Equal(t, "j", tok.ID())
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Now()

	require.Equal(t, time.Minute, Remaining(AccessToken{ExpiresAt: now.Add(time.Minute)}, now))
	require.Zero(t, Remaining(RefreshToken{ExpiresAt: now.Add(-time.Minute)}, now))
}
