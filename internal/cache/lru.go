// Package cache provides a small generic LRU cache used by the glyph
// cache and the allocator pool bookkeeping.
package cache

import "sync"

// node is an entry in the doubly-linked recency list.
// The node stores its key for O(1) deletion from the map on eviction.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// LRU is a bounded least-recently-used cache.
//
// Eviction happens on insert once the capacity is exceeded, and the
// evicted value is handed to the optional OnEvict callback so callers
// can release attached resources. A capacity of 0 means unbounded.
//
// LRU is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used
	capacity int

	// OnEvict, if set, is called with each evicted key/value after it
	// has been removed. Called without the cache lock held is not
	// guaranteed; the callback must not call back into the cache.
	OnEvict func(K, V)
}

// NewLRU creates an LRU with the given capacity. Capacity 0 disables
// eviction.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		entries:  make(map[K]*node[K, V]),
		capacity: capacity,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Peek returns the value for key without touching recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Put stores a value, evicting the least recently used entries if the
// capacity is exceeded.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		c.mu.Unlock()
		return
	}

	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)

	var evicted []*node[K, V]
	for c.capacity > 0 && len(c.entries) > c.capacity && c.tail != nil {
		old := c.tail
		c.unlink(old)
		delete(c.entries, old.key)
		evicted = append(evicted, old)
	}
	c.mu.Unlock()

	if c.OnEvict != nil {
		for _, e := range evicted {
			c.OnEvict(e.key, e.value)
		}
	}
}

// Delete removes an entry. Returns true if the entry existed.
// OnEvict is not called for explicit deletes.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	return true
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries without invoking OnEvict.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*node[K, V])
	c.head = nil
	c.tail = nil
}

// pushFront inserts a detached node at the head. Caller holds mu.
func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// moveToFront marks a node most recently used. Caller holds mu.
func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// unlink removes a node from the recency list. Caller holds mu.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
