package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/askuni/kbase/core"
)

// DefaultQueryTTL is how long a cached query result stays valid.
const DefaultQueryTTL = 3600 * time.Second

// queryEntry holds a formatted result payload and its insertion time.
type queryEntry struct {
	payload    string
	insertedAt time.Time
}

// QueryCache caches formatted search payloads keyed by a normalization of
// the raw query (case-folded, whitespace-trimmed, hashed). Entries expire
// lazily after the TTL; nothing is proactively purged and nothing is ever
// explicitly invalidated.
//
// Concurrent misses for the same key may both compute and both write;
// last write wins. That race is benign because values for the same query
// are idempotent within the TTL window.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[core.ID]queryEntry
	ttl     time.Duration
	now     func() time.Time // swappable for tests
}

// NewQueryCache creates a query cache with the given TTL.
// A ttl <= 0 falls back to DefaultQueryTTL.
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{
		entries: make(map[core.ID]queryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached payload for the query, if present and unexpired.
// An expired entry is treated as a miss.
func (c *QueryCache) Get(query string) (string, bool) {
	key := normalizeQueryKey(query)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		return "", false
	}
	return entry.payload, true
}

// Put stores a payload for the query, stamping it with the current time.
func (c *QueryCache) Put(query, payload string) {
	key := normalizeQueryKey(query)

	c.mu.Lock()
	c.entries[key] = queryEntry{payload: payload, insertedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of entries held, expired ones included.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// normalizeQueryKey case-folds and trims the raw query, then hashes it so
// that trivially different spellings of the same question share an entry.
func normalizeQueryKey(query string) core.ID {
	return core.IDFromContent(strings.ToLower(strings.TrimSpace(query)))
}
