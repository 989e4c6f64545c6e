package marketdata

import (
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// TTLCache is a small expiring key/value store for formatted market payloads.
// Entries are evicted lazily on read.
// -----------------------------------------------------------------------------

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// -----------------------------------------------------------------------------

func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// -----------------------------------------------------------------------------

func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// -----------------------------------------------------------------------------

// Get returns the live value for key, or (nil, false) when absent or expired.
// Expired entries are removed on access.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// -----------------------------------------------------------------------------

func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// -----------------------------------------------------------------------------

func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
