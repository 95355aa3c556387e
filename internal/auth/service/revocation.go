package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabgate/pkg/kvx"
)

// BlacklistPrefix namespaces revoked jti keys in the key-value store.
const BlacklistPrefix = "token:blacklist:"

// RevocationService is the denylist of revoked token ids.
//
// It fails open: when the store is Disconnected, or a connected store
// returns an error, revoking is a no-op and every jti reads as not revoked.
type RevocationService struct {
	mu sync.RWMutex
	kv kvx.Store

	Logger *slog.Logger
}

func NewRevocationService(kv kvx.Store, logger *slog.Logger) *RevocationService {
	if kv == nil {
		kv = kvx.Disconnected{}
	}
	return &RevocationService{kv: kv, Logger: logger}
}

// Store returns the current backing store.
func (s *RevocationService) Store() kvx.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kv
}

// Swap replaces the backing store and returns the previous one.
func (s *RevocationService) Swap(kv kvx.Store) kvx.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.kv
	s.kv = kv
	return old
}

// Connected reports whether revocation is currently effective.
func (s *RevocationService) Connected() bool {
	return s.Store().Connected()
}

// Ping checks the backing store.
func (s *RevocationService) Ping(ctx context.Context) error {
	return s.Store().Ping(ctx)
}

// Revoke blacklists jti for ttl. A non-positive ttl means the token is
// already expired and nothing is written. Revoking twice is harmless.
func (s *RevocationService) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	ttl = roundUpSeconds(ttl)
	if err := s.Store().Set(ctx, BlacklistPrefix+jti, "1", ttl); err != nil {
		s.Logger.Warn("failed to revoke token", "jti", jti, "error", err)
		return err
	}
	return nil
}

// RevokeOnce blacklists jti only if it is not already blacklisted and
// reports whether this call did it. Concurrent callers racing on the same
// jti see exactly one true.
//
// A Disconnected store always reports true.
func (s *RevocationService) RevokeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if jti == "" || ttl <= 0 {
		return false, nil
	}

	first, err := s.Store().SetNX(ctx, BlacklistPrefix+jti, "1", roundUpSeconds(ttl))
	if err != nil {
		s.Logger.Warn("failed to revoke token", "jti", jti, "error", err)
		return false, err
	}
	return first, nil
}

// IsRevoked reports whether jti is blacklisted. Store errors read as false.
func (s *RevocationService) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}

	_, ok, err := s.Store().Get(ctx, BlacklistPrefix+jti)
	if err != nil {
		s.Logger.Warn("revocation lookup failed, allowing token", "jti", jti, "error", err)
		return false
	}
	return ok
}

// roundUpSeconds makes the entry live at least as long as the token.
func roundUpSeconds(d time.Duration) time.Duration {
	if r := d % time.Second; r != 0 {
		d += time.Second - r
	}
	return d
}
