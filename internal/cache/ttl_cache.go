// Package cache provides a small in-memory TTL cache used to serve hot
// balance and report lookups without a database round trip. Entries are
// invalidated on write, so the TTL only bounds staleness across processes.
package cache

import (
	"sync"
	"time"
)

// Cache is the minimal TTL cache interface consumed by services.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in memory with a shared default TTL.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[K]entry[V]
}

// NewTTLCache constructs a TTLCache whose entries expire after ttl. A zero or
// negative ttl disables expiry.
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
	}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value under the cache's default TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete removes a cached entry. Writers call this so readers never see a
// stale balance after a posting.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *TTLCache[K, V]) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[K]entry[V])
	c.mu.Unlock()
}

// NoopCache always misses and ignores writes. Used when caching is disabled.
type NoopCache[K comparable, V any] struct{}

// Get always returns a miss.
func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set is a no-op.
func (NoopCache[K, V]) Set(key K, value V) {}

// Delete is a no-op.
func (NoopCache[K, V]) Delete(key K) {}
