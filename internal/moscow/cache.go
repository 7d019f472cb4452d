package moscow

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL absorbs the drift of days-until-due with wall-clock time:
// even an unchanged task set is re-analyzed after an hour.
const DefaultCacheTTL = time.Hour

// cacheSize bounds the number of users with a live snapshot.
const cacheSize = 1024

// Cache memoizes one Snapshot per user. Recomputation is pure, so concurrent
// readers racing through a miss may recompute redundantly; that is safe,
// merely wasteful, and needs no locking beyond what the LRU provides.
type Cache struct {
	entries *expirable.LRU[string, *Snapshot]
}

// NewCache creates a snapshot cache with the given TTL. A zero TTL falls back
// to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: expirable.NewLRU[string, *Snapshot](cacheSize, nil, ttl),
	}
}

// Get returns the cached snapshot for a user, computing and storing a fresh
// one on a miss.
func (c *Cache) Get(userID string, compute func() (*Snapshot, error)) (*Snapshot, error) {
	if snapshot, ok := c.entries.Get(userID); ok {
		return snapshot, nil
	}
	return c.Refresh(userID, compute)
}

// Refresh bypasses the cache, recomputes synchronously and repopulates the
// entry.
func (c *Cache) Refresh(userID string, compute func() (*Snapshot, error)) (*Snapshot, error) {
	snapshot, err := compute()
	if err != nil {
		return nil, err
	}
	c.entries.Add(userID, snapshot)
	return snapshot, nil
}

// Invalidate evicts a user's snapshot. The task store calls this on every
// task create, update or delete for that user.
func (c *Cache) Invalidate(userID string) {
	c.entries.Remove(userID)
}
