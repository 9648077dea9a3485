// Package cache is a per-process TTL read cache that collapses concurrent
// fetches for the same key into one backend call. It never invalidates
// itself on writes: callers performing mutations must invalidate the keys
// they touched. Stale reads up to the TTL are an accepted trade-off.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL        = 60 * time.Second
	DefaultMaxEntries = 256
)

var ErrDisposed = errors.New("cache: disposed")

type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value    any
	storedAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	max      int
	entries  map[string]entry
	group    singleflight.Group
	disposed bool

	now func() time.Time // swapped in tests
}

func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns a fresh cached value when one exists; otherwise it joins any
// in-flight fetch for the key, or starts one. Results are cached on success
// only; a failed fetch leaves the cache untouched.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) < c.ttl {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have stored the value while this call
		// waited on the flight group.
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) < c.ttl {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	return v, err
}

func (c *Cache) store(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: v, storedAt: c.now()}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	for _, k := range keys {
		c.group.Forget(k)
	}
}

// Clear drops all cached values but keeps the cache usable.
func (c *Cache) Clear() {
	c.InvalidateAll()
}

// Dispose empties the cache and rejects further use.
func (c *Cache) Dispose() {
	c.mu.Lock()
	c.entries = nil
	c.disposed = true
	c.mu.Unlock()
}

// Len reports the number of cached values, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
