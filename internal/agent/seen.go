package agent

import "sync"

// SeenCache remembers which gateway message IDs were already handled,
// so redelivered webhooks never produce a second reply. The cache is
// bounded: once it reaches capacity it is cleared wholesale, trading a
// sliver of dedup coverage for constant memory.
type SeenCache struct {
	capacity int

	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSeenCache creates a cache that holds up to capacity IDs.
func NewSeenCache(capacity int) *SeenCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &SeenCache{
		capacity: capacity,
		ids:      make(map[string]struct{}, capacity),
	}
}

// Seen records id and reports whether it was already present.
func (c *SeenCache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[id]; ok {
		return true
	}
	if len(c.ids) >= c.capacity {
		c.ids = make(map[string]struct{}, c.capacity)
	}
	c.ids[id] = struct{}{}
	return false
}

// Len returns the number of IDs currently tracked.
func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
