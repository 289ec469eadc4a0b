package filter

import "sync"

// verdict is a cached match outcome. The matched term travels with the flag
// so that cache hits can still report what fired.
type verdict struct {
	flagged bool
	term    string
}

// verdictCache is a bounded message-to-verdict map. When full, one arbitrary
// entry is evicted; there is no recency tracking. The map is keyed by the
// raw message, so lookups skip the whole pipeline including preprocessing.
type verdictCache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]verdict
}

func newVerdictCache(max int) *verdictCache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &verdictCache{
		max:     max,
		entries: make(map[string]verdict, max),
	}
}

// get distinguishes a cached false verdict from a miss; both verdict values
// are first-class citizens.
func (c *verdictCache) get(key string) (verdict, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	return v, ok
}

func (c *verdictCache) put(key string, v verdict) {
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		// Map iteration order is unspecified, which is exactly the eviction
		// policy: drop whichever entry comes up first.
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = v
	c.mu.Unlock()
}

func (c *verdictCache) len() int {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return n
}
