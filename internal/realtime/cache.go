package realtime

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one cached read
type Entry struct {
	Data      json.RawMessage
	FetchedAt time.Time
	Stale     bool
}

// QueryCache holds REST reads keyed by resource path.
// A key also owns its query-string variants: "/api/tasks" covers "/api/tasks?page=2".
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewQueryCache creates an empty cache
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Set stores a fresh entry
func (c *QueryCache) Set(key string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{Data: data, FetchedAt: c.now()}
}

// Get returns a copy of the entry for key
func (c *QueryCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Fresh returns the data for key only when it is cached and not stale
func (c *QueryCache) Fresh(key string) (json.RawMessage, bool) {
	e, ok := c.Get(key)
	if !ok || e.Stale {
		return nil, false
	}
	return e.Data, true
}

// Has reports whether key is cached at all
func (c *QueryCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// IsStale reports whether the next read of key must refetch.
// Missing entries are stale.
func (c *QueryCache) IsStale(key string) bool {
	e, ok := c.Get(key)
	return !ok || e.Stale
}

// Invalidate marks key and its variants stale and returns how many entries changed
func (c *QueryCache) Invalidate(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if matchesKey(k, key) {
			e.Stale = true
			n++
		}
	}
	return n
}

// Remove evicts key and its variants and returns how many entries were removed
func (c *QueryCache) Remove(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if matchesKey(k, key) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Keys returns every cached key in sorted order
func (c *QueryCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached entries
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func matchesKey(candidate, key string) bool {
	return candidate == key || strings.HasPrefix(candidate, key+"?")
}
