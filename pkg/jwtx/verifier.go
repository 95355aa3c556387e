package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and returns the matching Token variant.
type Verifier interface {
	Verify(token string) (Token, error)
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrWrongType    = errors.New("jwtx: wrong token type")
)

// HS256Verifier checks tokens produced by HS256Signer.
type HS256Verifier struct {
	secret []byte
	issuer string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHS256Verifier creates a verifier. An empty issuer disables the iss check.
func NewHS256Verifier(secret []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer, Now: time.Now}
}

// Verify parses tokenStr, checks its signature, expiry and issuer, and returns
// an AccessToken or RefreshToken. Failures wrap one of ErrMalformed,
// ErrInvalidSig, ErrExpired, ErrIssuer or ErrInvalidClaim.
func (v *HS256Verifier) Verify(tokenStr string) (Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.Now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return claims.toToken()
}

// classify maps golang-jwt errors onto the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}

// VerifyAccess verifies tokenStr and requires it to be an access token.
func VerifyAccess(v Verifier, tokenStr string) (AccessToken, error) {
	tok, err := v.Verify(tokenStr)
	if err != nil {
		return AccessToken{}, err
	}
	access, ok := tok.(AccessToken)
	if !ok {
		return AccessToken{}, ErrWrongType
	}
	return access, nil
}

// VerifyRefresh verifies tokenStr and requires it to be a refresh token.
func VerifyRefresh(v Verifier, tokenStr string) (RefreshToken, error) {
	tok, err := v.Verify(tokenStr)
	if err != nil {
		return RefreshToken{}, err
	}
	refresh, ok := tok.(RefreshToken)
	if !ok {
		return RefreshToken{}, ErrWrongType
	}
	return refresh, nil
}
