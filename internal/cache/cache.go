// Package cache provides an in-memory TTL cache used to memoize external
// provider calls (web search, weather lookups).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Stats reports the current state of a Cache.
type Stats struct {
	Enabled    bool          `json:"enabled"`
	TotalItems int           `json:"total_items"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

type entry struct {
	value  any
	expiry time.Time
}

// Cache is an in-memory key/value store with per-entry expiry.
//
// When disabled, Get always misses and Set is a no-op, so callers never need
// to branch on the enabled flag — the cache degrades to a pass-through.
type Cache struct {
	mu         sync.Mutex
	items      map[string]entry
	defaultTTL time.Duration
	enabled    bool
}

// New creates a Cache. A defaultTTL <= 0 falls back to one hour.
func New(enabled bool, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	if !enabled {
		slog.Info("cache is disabled")
	}
	return &Cache{
		items:      make(map[string]entry),
		defaultTTL: defaultTTL,
		enabled:    enabled,
	}
}

// Get returns the value stored under key, or false when the key is absent,
// expired, or the cache is disabled. Expired entries are removed lazily here.
func (c *Cache) Get(key string) (any, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(e.expiry) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, -1)
}

// SetTTL stores value under key. A ttl of 0 means the entry expires
// immediately; a negative ttl falls back to the default.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl < 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiry: time.Now().Add(ttl)}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

// CleanupExpired removes all expired entries and returns how many were removed.
func (c *Cache) CleanupExpired() int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.items {
		if !now.Before(e.expiry) {
			delete(c.items, k)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("cleaned up expired cache items", "count", removed)
	}
	return removed
}

// Stats returns a snapshot of the cache state.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Enabled:    c.enabled,
		TotalItems: len(c.items),
		DefaultTTL: c.defaultTTL,
	}
}

// Key derives a deterministic cache key from a function identity and its
// arguments. Identical call signatures always hash to the same key: the
// arguments are serialized through encoding/json, which emits map keys in
// sorted order, so argument maps do not depend on iteration order.
func Key(fn string, args ...any) string {
	payload := struct {
		Func string `json:"func"`
		Args []any  `json:"args"`
	}{Func: fn, Args: args}

	data, err := json.Marshal(payload)
	if err != nil {
		// Arguments that cannot be serialized still need a stable-ish key.
		data = []byte(fmt.Sprintf("%s:%v", fn, args))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Do memoizes fn through c: on a hit the cached value is returned without
// invoking fn, on a miss fn runs and its result is stored under key for ttl
// (ttl < 0 selects the cache default). Errors from fn are never cached.
func Do[T any](c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	result, err := fn()
	if err != nil {
		return result, err
	}
	c.SetTTL(key, result, ttl)
	return result, nil
}
