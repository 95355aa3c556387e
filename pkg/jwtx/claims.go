package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenType is carried in the "type" claim so a token of one kind is never
// accepted where the other is expected.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Claims is the wire form shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Role at issuance time. Only set on access tokens.
	Role string `json:"role,omitempty"`

	Type TokenType `json:"type"`
}

// newClaims builds claims with a fresh jti for the given token type.
func newClaims(issuer, subject, role string, typ TokenType, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
		Type: typ,
	}
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// toToken converts verified claims into the matching Token variant.
func (c *Claims) toToken() (Token, error) {
	if c.Subject == "" || c.ID == "" || c.ExpiresAt == nil {
		return nil, ErrInvalidClaim
	}

	switch c.Type {
	case TypeAccess:
		if c.Role == "" {
			return nil, ErrInvalidClaim
		}
		return AccessToken{
			Subject:   c.Subject,
			Role:      c.Role,
			JTI:       c.ID,
			ExpiresAt: c.ExpiresAt.Time,
		}, nil
	case TypeRefresh:
		return RefreshToken{
			Subject:   c.Subject,
			JTI:       c.ID,
			ExpiresAt: c.ExpiresAt.Time,
		}, nil
	default:
		return nil, ErrInvalidClaim
	}
}
