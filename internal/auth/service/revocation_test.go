package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabgate/pkg/kvx"
	"github.com/aussiebroadwan/tabgate/pkg/kvx/kvxtest"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestRevocation_RevokeAndCheck(t *testing.T) {
	ctx := t.Context()
	kv := kvxtest.NewMemory()
	now := time.Now()
	kv.Now = func() time.Time { return now }
	rs := NewRevocationService(kv, slogx.Discard())

	require.False(t, rs.IsRevoked(ctx, "jti-1"))

	require.NoError(t, rs.Revoke(ctx, "jti-1", 1500*time.Millisecond))
	require.True(t, rs.IsRevoked(ctx, "jti-1"))
	require.Equal(t, 2*time.Second, kv.TTLs[BlacklistPrefix+"jti-1"], "ttl rounds up to whole seconds")

	val, ok, err := kv.Get(ctx, BlacklistPrefix+"jti-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", val)

	// Idempotent.
	require.NoError(t, rs.Revoke(ctx, "jti-1", time.Minute))
	require.True(t, rs.IsRevoked(ctx, "jti-1"))

	now = now.Add(2 * time.Minute)
	require.False(t, rs.IsRevoked(ctx, "jti-1"), "entry expires with the token")
}

func TestRevocation_NonPositiveTTLNeverWrites(t *testing.T) {
	ctx := t.Context()
	kv := kvxtest.NewMemory()
	rs := NewRevocationService(kv, slogx.Discard())

	for _, ttl := range []time.Duration{0, -time.Second} {
		require.NoError(t, rs.Revoke(ctx, "jti", ttl))
		first, err := rs.RevokeOnce(ctx, "jti", ttl)
		require.NoError(t, err)
		require.False(t, first)
	}
	require.Zero(t, kv.Len())
	require.False(t, rs.IsRevoked(ctx, "jti"))
}

func TestRevocation_RevokeOnce(t *testing.T) {
	ctx := t.Context()
	rs := NewRevocationService(kvxtest.NewMemory(), slogx.Discard())

	first, err := rs.RevokeOnce(ctx, "jti", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	first, err = rs.RevokeOnce(ctx, "jti", time.Minute)
	require.NoError(t, err)
	require.False(t, first)
	require.True(t, rs.IsRevoked(ctx, "jti"))
}

func TestRevocation_FailsOpen(t *testing.T) {
	ctx := t.Context()

	t.Run("disconnected", func(t *testing.T) {
		rs := NewRevocationService(kvx.Disconnected{}, slogx.Discard())
		require.False(t, rs.Connected())
		require.NoError(t, rs.Revoke(ctx, "jti", time.Minute))
		require.False(t, rs.IsRevoked(ctx, "jti"))

		first, err := rs.RevokeOnce(ctx, "jti", time.Minute)
		require.NoError(t, err)
		require.True(t, first)
		require.Error(t, rs.Ping(ctx))
	})

	t.Run("nil store", func(t *testing.T) {
		rs := NewRevocationService(nil, slogx.Discard())
		require.False(t, rs.Connected())
	})

	t.Run("store errors", func(t *testing.T) {
		kv := kvxtest.NewMemory()
		rs := NewRevocationService(kv, slogx.Discard())
		require.NoError(t, rs.Revoke(ctx, "jti", time.Minute))

		kv.Fail = true
		require.False(t, rs.IsRevoked(ctx, "jti"))
		require.ErrorIs(t, rs.Revoke(ctx, "other", time.Minute), kvxtest.ErrInjected)
	})
}

func TestKVWatchdog_Reconnects(t *testing.T) {
	rs := NewRevocationService(kvx.Disconnected{}, slogx.Discard())

	var up bool
	mem := kvxtest.NewMemory()
	connect := func(context.Context) kvx.Store {
		if !up {
			return kvx.Disconnected{}
		}
		return mem
	}
	w := NewKVWatchdog(rs, connect, slogx.Discard(), time.Second)

	require.False(t, w.check())
	require.False(t, rs.Connected())

	up = true
	require.True(t, w.check())
	require.True(t, rs.Connected())
	require.Same(t, mem, rs.Store())

	// Already connected: Connect is not called again.
	up = false
	require.True(t, w.check())
}

func TestKVWatchdog_StartStop(t *testing.T) {
	rs := NewRevocationService(kvx.Disconnected{}, slogx.Discard())
	w := NewKVWatchdog(rs, func(context.Context) kvx.Store { return kvx.Disconnected{} }, slogx.Discard(), 0)
	require.Equal(t, 30*time.Second, w.Interval)

	w.Start()
	w.Stop()
	w.Stop()
}

func TestKVWatchdog_StopWithoutStart(t *testing.T) {
	rs := NewRevocationService(kvx.Disconnected{}, slogx.Discard())
	w := NewKVWatchdog(rs, func(context.Context) kvx.Store { return kvx.Disconnected{} }, slogx.Discard(), time.Second)

	w.Stop()
}
