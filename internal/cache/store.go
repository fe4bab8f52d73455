// Package cache provides the storefront's shared response cache: byte
// stores with expiry and a caching product.Source decorator.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Store holds opaque values with a time to live. A miss is reported as
// ok == false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
)

// DefaultMaxEntries bounds a Memory store created with a non-positive limit.
const DefaultMaxEntries = 10_000

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// Stats is a snapshot of Memory store counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Memory is an in-process Store. Expired entries are dropped lazily on
// read and swept when the store reaches its entry limit.
type Memory struct {
	mu         sync.Mutex
	items      map[string]memoryItem
	maxEntries int
	now        func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemory creates a Memory store holding at most maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		items:      make(map[string]memoryItem),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if ok && !m.now().Before(it.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	m.hits.Add(1)
	return append([]byte(nil), it.value...), true, nil
}

// Set stores a copy of value under key. A non-positive ttl is a no-op.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxEntries {
		m.sweep(now)
		for k := range m.items {
			if len(m.items) < m.maxEntries {
				break
			}
			delete(m.items, k)
		}
	}
	m.items[key] = memoryItem{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// Stats returns hit and miss counters and the current entry count.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	n := len(m.items)
	m.mu.Unlock()
	return Stats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: n,
	}
}

// sweep drops expired entries. Must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	for k, it := range m.items {
		if !now.Before(it.expiresAt) {
			delete(m.items, k)
		}
	}
}
