package template

import (
	"sync"
	"time"
)

type cacheEntry struct {
	tmpl      *Template
	expiresAt time.Time
}

// ttlCache is a thread-safe TTL cache over the template store. It is
// explicitly a performance layer, never the source of truth: the engine
// invalidates entries on every upsert.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// get returns the cached template and whether a live entry exists. A cached
// miss (nil template) is also stored so repeated lookups of absent variants
// skip the store.
func (c *ttlCache) get(key string) (*Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.tmpl, true
}

func (c *ttlCache) put(key string, tmpl *Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		tmpl:      tmpl,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *ttlCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *ttlCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
