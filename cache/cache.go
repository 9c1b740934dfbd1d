// ABOUTME: In-memory response cache with TTL-based expiration
// ABOUTME: Shared data-fetching cache so components reuse results without refetching

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache keyed by request path. The session
// manager publishes the user profile here after login or silent refresh so
// other consumers observe it without a redundant network call.
type Cache struct {
	store sync.Map
	ttl   time.Duration
}

// New creates a cache with the given default TTL and starts the
// background cleanup loop.
func New(ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl}
	go c.startCleanup()
	return c
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Store(key, entry{
		data:      value,
		expiresAt: time.Now().Add(c.ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// Delete removes a key. Used on logout and failed refresh so stale
// profile data never outlives the session.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val any) bool {
			if now.After(val.(entry).expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
