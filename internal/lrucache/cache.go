// Package lrucache implements a capacity-bounded, multi-tenant LRU cache for
// tenant-scoped records.
//
// A Cache is not safe for concurrent use. Callers that share one across
// goroutines must guard the whole instance with a single lock.
package lrucache

import (
	"errors"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ErrInvalidCapacity is returned by New when capacity is not positive.
var ErrInvalidCapacity = errors.New("lrucache: capacity must be positive")

// Identifiable is implemented by values that carry their own record id.
type Identifiable interface {
	RecordID() string
}

type entry[V Identifiable] struct {
	tenantID string
	value    V
}

// Cache keeps the capacity most recently used (tenant, record) -> V mappings.
type Cache[V Identifiable] struct {
	lru      *simplelru.LRU[Key, entry[V]]
	capacity int

	hits      int64
	misses    int64
	evictions int64
	inserts   int64
}

// New creates a cache holding at most capacity entries.
func New[V Identifiable](capacity int) (*Cache[V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	l, err := simplelru.NewLRU[Key, entry[V]](capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: l, capacity: capacity}, nil
}

// Get returns the cached value for the record and marks it most recently used.
func (c *Cache[V]) Get(tenantID, recordID string) (V, bool) {
	e, ok := c.lru.Get(NewKey(tenantID, recordID))
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Contains reports whether the record is cached without touching its recency.
func (c *Cache[V]) Contains(tenantID, recordID string) bool {
	return c.lru.Contains(NewKey(tenantID, recordID))
}

// Put caches v under the tenant and v's own record id, at the most recently
// used position. If the cache is full the least recently used entry is
// evicted first. It reports whether an eviction happened.
func (c *Cache[V]) Put(tenantID string, v V) bool {
	key := NewKey(tenantID, v.RecordID())

	// Re-insertion must land at most-recent, not keep its stale slot.
	c.lru.Remove(key)

	evicted := c.lru.Add(key, entry[V]{tenantID: tenantID, value: v})
	c.inserts++
	if evicted {
		c.evictions++
	}
	return evicted
}

// Remove drops the record if present and reports whether it was.
func (c *Cache[V]) Remove(tenantID, recordID string) bool {
	return c.lru.Remove(NewKey(tenantID, recordID))
}

// ClearTenant removes every entry owned by tenantID and returns the count.
func (c *Cache[V]) ClearTenant(tenantID string) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok || e.tenantID != tenantID {
			continue
		}
		if c.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

// ClearAll empties the cache and returns the number of entries removed.
// Counters are left untouched.
func (c *Cache[V]) ClearAll() int {
	n := c.lru.Len()
	c.lru.Purge()
	return n
}

// EntriesForTenant returns the cached values owned by tenantID.
//
// Unlike Get, this touches neither recency nor the lookup counters.
func (c *Cache[V]) EntriesForTenant(tenantID string) []V {
	var out []V
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && e.tenantID == tenantID {
			out = append(out, e.value)
		}
	}
	return out
}

// Tenants returns the distinct tenants with cached entries, ordered by the
// recency of their least recently used entry.
func (c *Cache[V]) Tenants() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if _, dup := seen[e.tenantID]; dup {
			continue
		}
		seen[e.tenantID] = struct{}{}
		out = append(out, e.tenantID)
	}
	return out
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Inserts:   c.inserts,
	}
}

// ResetStats zeroes the hit, miss, eviction and insert counters.
func (c *Cache[V]) ResetStats() {
	c.hits, c.misses, c.evictions, c.inserts = 0, 0, 0, 0
}
