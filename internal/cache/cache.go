package cache

import (
	"sync"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// entry pairs a cached value with its insertion time.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a thread-safe in-memory cache where every entry expires a fixed
// duration after insertion. Expired entries are evicted lazily on Get or by
// an explicit CleanupExpired sweep.
type Cache[K comparable, V any] struct {
	name    string
	ttl     time.Duration
	mu      sync.Mutex
	entries map[K]entry[V]

	// now is swappable for tests
	now func() time.Time
}

// Stats describes the current state of a cache.
type Stats struct {
	Name string        `json:"name"`
	Size int           `json:"size"`
	TTL  time.Duration `json:"ttl"`
}

// New creates a cache with the given TTL. The name labels the cache in logs
// and metrics.
func New[K comparable, V any](name string, ttl time.Duration) *Cache[K, V] {
	logging.Debug("cache %q initialized with TTL %v", name, ttl)
	return &Cache[K, V]{
		name:    name,
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value for key and true if present and younger than
// the TTL. An entry whose age has reached the TTL is removed and reported as
// a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		return zero, false
	}

	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key, resetting its age.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	metrics.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
}

// Invalidate removes key from the cache. Returns true if it was present.
func (c *Cache[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	metrics.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
	return true
}

// InvalidateFunc removes every entry whose key matches the predicate and
// returns the number removed.
func (c *Cache[K, V]) InvalidateFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		metrics.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
	}
	return removed
}

// Clear removes all entries and returns how many were dropped.
func (c *Cache[K, V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[K]entry[V])
	metrics.CacheEntries.WithLabelValues(c.name).Set(0)
	if n > 0 {
		logging.Info("cache %q cleared: %d entries removed", c.name, n)
	}
	return n
}

// CleanupExpired removes every entry whose age has reached the TTL and
// returns the number removed.
func (c *Cache[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		metrics.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(removed))
		logging.Debug("cache %q: cleaned up %d expired entries", c.name, removed)
	}
	return removed
}

// Len returns the number of entries currently stored, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache state.
func (c *Cache[K, V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Name: c.name, Size: len(c.entries), TTL: c.ttl}
}

// SetNowFunc replaces the clock used for age checks. Tests only.
func (c *Cache[K, V]) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
