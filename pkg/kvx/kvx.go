// Package kvx wraps the optional key-value store used for token revocation.
//
// A Store is either Connected, backed by a Redis client, or Disconnected.
// Callers check Connected before relying on stored state; a Disconnected
// store accepts writes and reports every key as absent.
package kvx

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the capability the core needs from a TTL-aware key-value store.
type Store interface {
	// Connected reports whether the store is backed by a live client.
	Connected() bool

	// Get returns the value for key. ok is false if the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, expiring after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores value under key only if key does not exist yet. It
	// reports whether the write happened.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrDisconnected is returned by Disconnected.Ping.
var ErrDisconnected = errors.New("kvx: store not connected")

const (
	defaultDialTimeout  = 2 * time.Second
	defaultReadTimeout  = 500 * time.Millisecond
	defaultWriteTimeout = 500 * time.Millisecond
)

// Connect parses url, dials Redis and checks it with PING. An empty url, a bad
// url or a failed ping all yield Disconnected; the cause is logged, not returned.
func Connect(ctx context.Context, url string, logger *slog.Logger) Store {
	if url == "" {
		logger.Warn("redis url not configured, token revocation disabled")
		return Disconnected{}
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid redis url, token revocation disabled", "error", err)
		return Disconnected{}
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = defaultDialTimeout
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = defaultReadTimeout
	}
	if opt.WriteTimeout == 0 {
		opt.WriteTimeout = defaultWriteTimeout
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("redis unreachable, token revocation disabled",
			"addr", opt.Addr,
			"error", err,
		)
		return Disconnected{}
	}

	logger.Info("redis connected", "addr", opt.Addr, "db", opt.DB)
	return NewRedis(client)
}

// Redis is the Connected variant.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Connected() bool { return true }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Disconnected is the variant used when no Redis is available.
type Disconnected struct{}

func (Disconnected) Connected() bool { return false }

func (Disconnected) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (Disconnected) Set(context.Context, string, string, time.Duration) error {
	return nil
}

// SetNX always reports a successful write so single-use checks stay open.
func (Disconnected) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

func (Disconnected) Ping(context.Context) error { return ErrDisconnected }

func (Disconnected) Close() error { return nil }
