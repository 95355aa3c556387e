package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedLimiter_ReserveAndRefill(t *testing.T) {
	kl := newKeyedLimiter(RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})
	now := time.Now()

	require.Zero(t, kl.reserve("a", now))
	require.Zero(t, kl.reserve("a", now))

	delay := kl.reserve("a", now)
	require.Greater(t, delay, time.Duration(0))
	require.LessOrEqual(t, delay, 30*time.Second)

	// A rejected request does not spend a token.
	require.Zero(t, kl.reserve("a", now.Add(delay)))
	require.Zero(t, kl.reserve("b", now), "keys are independent")
}

func TestKeyedLimiter_EvictsIdleBuckets(t *testing.T) {
	kl := newKeyedLimiter(RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})
	now := time.Now()

	kl.reserve("idle", now)
	kl.reserve("busy", now)
	require.Len(t, kl.buckets, 2)

	kl.reserve("busy", now.Add(idleEvictAfter-time.Second))
	kl.reserve("busy", now.Add(idleEvictAfter+time.Second))

	require.Len(t, kl.buckets, 1)
	require.Contains(t, kl.buckets, "busy")
}
