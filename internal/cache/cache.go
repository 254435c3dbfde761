// Package cache provides the TTL cache behind the template and compiled-template caches.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTL is a string cache whose entries expire after a per-entry time-to-live.
// A zero or negative TTL stores an entry that never expires. Safe for concurrent use.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	group   singleflight.Group
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// New creates an empty cache.
func New() *TTL {
	return &TTL{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock creates an empty cache that reads time from now.
func NewWithClock(now func() time.Time) *TTL {
	c := New()
	if now != nil {
		c.now = now
	}
	return c
}

// Get returns the live value for key. Expired entries are evicted and reported as misses.
func (c *TTL) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if e.expired(c.now()) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *TTL) Set(key, value string, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// GetOrLoad returns the live value for key, or calls load, stores its result for ttl and
// returns it. Concurrent misses on the same key share one load call. hit reports whether
// the value came from the cache. Errors from load are returned and nothing is stored.
func (c *TTL) GetOrLoad(key string, ttl time.Duration, load func() (string, error)) (value string, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return "", err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Delete removes key.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes every entry.
func (c *TTL) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included until they are read.
func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
