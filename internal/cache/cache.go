package cache

import "sync"

// Key addresses a cached reference row.
type Key struct {
	Table string
	ID    string
}

// LookupCache keeps resolved reference rows so repeated polls skip the database.
// Misses can be cached too by storing the zero value.
type LookupCache[V any] struct {
	mu      sync.RWMutex
	entries map[Key]V

	Hits   SafeCounter
	Misses SafeCounter
}

func NewLookupCache[V any]() *LookupCache[V] {
	return &LookupCache[V]{entries: make(map[Key]V)}
}

// Get returns the cached value and counts the hit or miss.
func (c *LookupCache[V]) Get(table, id string) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[Key{Table: table, ID: id}]
	c.mu.RUnlock()
	if ok {
		c.Hits.Inc()
	} else {
		c.Misses.Inc()
	}
	return v, ok
}

func (c *LookupCache[V]) Set(table, id string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key{Table: table, ID: id}] = v
}

func (c *LookupCache[V]) Delete(table, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, Key{Table: table, ID: id})
}

// Len returns the number of cached rows.
func (c *LookupCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry and zeroes the counters.
func (c *LookupCache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]V)
	c.Hits.Set(0)
	c.Misses.Set(0)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
