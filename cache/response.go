package cache

import (
	"strings"
	"sync"
)

// DefaultResponseCapacity is the soft cap on retained responses.
const DefaultResponseCapacity = 100

// ResponseCache caches fully rendered answer strings keyed by the
// normalized user message. It holds at most capacity entries; once full,
// writes for new keys are silently dropped. There is no eviction: the
// cache retains the first capacity distinct questions until process
// restart.
type ResponseCache struct {
	mu       sync.RWMutex
	entries  map[string]string
	capacity int
}

// NewResponseCache creates a response cache with the given capacity.
// A capacity <= 0 falls back to DefaultResponseCapacity.
func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = DefaultResponseCapacity
	}
	return &ResponseCache{
		entries:  make(map[string]string, capacity),
		capacity: capacity,
	}
}

// Get returns the cached answer for the message, if any.
func (c *ResponseCache) Get(message string) (string, bool) {
	key := normalizeMessageKey(message)

	c.mu.RLock()
	answer, ok := c.entries[key]
	c.mu.RUnlock()
	return answer, ok
}

// Put stores an answer for the message. At capacity the write is dropped
// unless the key is already present, in which case the value is refreshed.
func (c *ResponseCache) Put(message, answer string) {
	key := normalizeMessageKey(message)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		return
	}
	c.entries[key] = answer
}

// Len returns the number of retained answers.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func normalizeMessageKey(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}
