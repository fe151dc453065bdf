// Package cache provides a bounded LRU cache for derived dashboard results
// (sorted process rows, classified tab lists) so repeated renders of the same
// snapshot don't recompute them.
//
// Cached results are a performance optimization only: every caller must be
// able to recompute the value, and a recompute must produce the same result
// as a cache hit for the same inputs.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// DefaultCapacity is the default maximum number of cached entries.
const DefaultCapacity = 50

// DefaultMaxAge is the default age threshold used by periodic sweeps.
const DefaultMaxAge = 5 * time.Minute

// BucketWidth is the time-bucket width mixed into derived cache keys.
// Keys naturally roll over as data ages, so stale results expire without
// an explicit invalidation call. Correctness is approximate by design.
const BucketWidth = 30 * time.Second

// entry is a single cached value with its insertion timestamp.
type entry struct {
	key       string
	value     interface{}
	timestamp time.Time
}

// LRU is a bounded key/value store with least-recently-used eviction.
// Recency is updated on both Get and Set. Age-based eviction only happens
// when Sweep is called; there is no background expiry.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time
}

// NewLRU creates an LRU cache with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get retrieves a cached value and marks it as recently used.
// The second return value reports whether the key was present.
func (c *LRU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Set inserts or overwrites a value and marks it as recently used.
// If the cache grows past capacity, the least-recently-used entry is evicted.
func (c *LRU) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.timestamp = c.now()
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{key: key, value: value, timestamp: c.now()})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Sweep removes all entries older than maxAge and returns how many were removed.
// Called periodically by the dashboard; entries never expire between calls.
func (c *LRU) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxAge)
	removed := 0

	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if e.timestamp.Before(cutoff) {
			c.order.Remove(el)
			delete(c.items, e.key)
			removed++
		}
		el = prev
	}

	return removed
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Key derives a cache key for a computed view of snapshot data.
// The key incorporates every input that affects the result: the item count,
// the active filter mode, and the active sort field, plus a coarse time
// bucket so cached views roll over as the underlying data ages.
func Key(kind string, count int, filter, sortField string, at time.Time) string {
	bucket := at.Unix() / int64(BucketWidth.Seconds())
	return fmt.Sprintf("%s:%d:%s:%s:%d", kind, count, filter, sortField, bucket)
}
