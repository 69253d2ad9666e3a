// Package dedupe tracks recently indexed quote IDs so replays and duplicate
// dump rows are dropped before they hit Elasticsearch.
package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	id     string
	seenAt time.Time
}

// Cache is a fixed-capacity TTL set of quote IDs. Eviction is oldest-first,
// driven by both capacity and age.
type Cache struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
}

// NewCache creates a cache with the provided capacity and ttl; non-positive
// values fall back to a capacity of 1 and a ttl of one hour.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		seen:     make(map[string]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// IsSeen reports whether the ID was recorded inside the ttl window. It does
// not record the ID; that is MarkSeen's job.
func (c *Cache) IsSeen(id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.seen[id]
	return ok && now.Sub(at) <= c.ttl
}

// MarkSeen records that an ID has been indexed.
func (c *Cache) MarkSeen(id string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[id] = now
	c.order = append(c.order, entry{id: id, seenAt: now})
	c.evict(now)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 {
		oldest := c.order[0]
		if len(c.seen) <= c.capacity && !oldest.seenAt.Before(cutoff) {
			return
		}
		c.order = c.order[1:]

		// Only drop the map entry if it was not refreshed since.
		if at, ok := c.seen[oldest.id]; ok && at.Equal(oldest.seenAt) {
			delete(c.seen, oldest.id)
		}
	}
}
