package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/store"
	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// dummyHash is verified against when the email is unknown so both login
// failure paths cost one argon2 derivation.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.PasswordHasher{}.Hash("not-a-real-password")
	if err != nil {
		return ""
	}
	return h
})

type AuthService struct {
	Store       store.Store
	Tokens      *TokenService
	Verifier    jwtx.Verifier
	Revocations *RevocationService
	Hasher      cryptox.PasswordHasher

	// Now defaults to time.Now.
	Now func() time.Time
}

// Login checks email and password and issues a token pair. Unknown email and
// wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmailWithPassword(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Hasher.Verify(password, dummyHash())
		l.Debug("login failed", "reason", "unknown email")
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	if !s.Hasher.Matches(password, u.PasswordHash) {
		l.Debug("login failed", "reason", "password mismatch", "user_id", u.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}
	u.PasswordHash = ""

	pair, err := s.Tokens.Issue(u)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user logged in", "user_id", u.ID)
	return u, pair, nil
}

// Refresh rotates a refresh token. The old jti is consumed with a single
// SET NX so a replayed or concurrently reused token fails, then the user is
// re-read so the new access token carries the current role.
//
// Every failure the caller can cause is ErrInvalidRefresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	tok, err := jwtx.VerifyRefresh(s.Verifier, refreshToken)
	if err != nil {
		l.Debug("refresh failed", "reason", "verification", "error", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	first, err := s.Revocations.RevokeOnce(ctx, tok.JTI, jwtx.Remaining(tok, s.now()))
	switch {
	case err != nil:
		// Store errors fail open like every other revocation path.
		l.Warn("refresh rotation not recorded", "jti", tok.JTI, "error", err)
	case !first:
		l.Warn("refresh token reuse detected", "jti", tok.JTI, "user_id", tok.Subject)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, tok.Subject)
	if errors.Is(err, store.ErrNotFound) {
		l.Debug("refresh failed", "reason", "subject no longer exists", "user_id", tok.Subject)
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	return s.Tokens.Issue(u)
}

// Logout revokes accessToken for the rest of its lifetime. It never fails:
// an unverifiable token is already unusable and store errors are logged.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	l := slogx.FromContext(ctx)

	tok, err := jwtx.VerifyAccess(s.Verifier, accessToken)
	if err != nil {
		l.Debug("logout with unverifiable token", "error", err)
		return
	}

	if err := s.Revocations.Revoke(ctx, tok.JTI, jwtx.Remaining(tok, s.now())); err != nil {
		return
	}
	l.Info("user logged out", "user_id", tok.Subject)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
