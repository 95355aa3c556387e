package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted by the signer and verifier.
const MinSecretLength = 32

// Issued is a signed token along with its expiry.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Pair is the result of a successful login or refresh.
type Pair struct {
	Access  Issued
	Refresh Issued
}

// Signer issues access/refresh pairs.
type Signer interface {
	Issue(subject, role string) (Pair, error)
}

// HS256Signer signs tokens with a shared HMAC secret.
type HS256Signer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHS256Signer creates a signer. Both TTLs must be positive.
func NewHS256Signer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("jwtx: secret too short")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("jwtx: token TTLs must be positive")
	}

	return &HS256Signer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		Now:        time.Now,
	}, nil
}

// Issue signs a new access and refresh token for subject. Every token gets
// its own jti.
func (s *HS256Signer) Issue(subject, role string) (Pair, error) {
	if subject == "" {
		return Pair{}, errors.New("jwtx: subject is required")
	}
	now := s.Now().UTC()

	access, err := s.sign(newClaims(s.issuer, subject, role, TypeAccess, s.accessTTL, now))
	if err != nil {
		return Pair{}, err
	}

	refresh, err := s.sign(newClaims(s.issuer, subject, "", TypeRefresh, s.refreshTTL, now))
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *HS256Signer) sign(claims Claims) (Issued, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}
