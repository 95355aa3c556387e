// Package kvxtest provides an in-memory kvx.Store for tests.
package kvxtest

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInjected is returned by every operation while Memory.Fail is set.
var ErrInjected = errors.New("kvxtest: injected failure")

type entry struct {
	value   string
	expires time.Time
}

// Memory is a Connected store that keeps keys in a map. Expiry is checked
// against Now on read.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry

	// Now defaults to time.Now.
	Now func() time.Time

	// Fail makes every operation return ErrInjected.
	Fail bool

	// TTLs records the ttl passed to each Set/SetNX call by key.
	TTLs map[string]time.Duration
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]entry),
		TTLs: make(map[string]time.Duration),
		Now:  time.Now,
	}
}

func (m *Memory) Connected() bool { return true }

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return "", false, ErrInjected
	}
	e, ok := m.lookup(key)
	return e.value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return ErrInjected
	}
	m.put(key, value, ttl)
	return nil
}

func (m *Memory) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return false, ErrInjected
	}
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.put(key, value, ttl)
	return true, nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return ErrInjected
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of live keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k := range m.data {
		if _, ok := m.lookup(k); ok {
			n++
		}
	}
	return n
}

func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expires.IsZero() && !m.Now().Before(e.expires) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) put(key, value string, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = m.Now().Add(ttl)
	}
	m.data[key] = e
	m.TTLs[key] = ttl
}
