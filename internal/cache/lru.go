// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package cache

import (
	"strings"
	"sync"
	"time"
)

// lruNode is an entry in the LRU list.
type lruNode[V any] struct {
	key       string
	value     V
	prev      *lruNode[V]
	next      *lruNode[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with optional TTL.
//
// Key features:
//   - O(1) Get, Add, Remove and eviction
//   - Lazy expiration on access, plus CleanupExpired for sweeps
//
// A doubly linked list keeps recency order and a map provides lookup.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int

	// ttl of zero disables expiry.
	ttl time.Duration

	items map[string]*lruNode[V]

	// head.next is the most recently used, tail.prev the least.
	head *lruNode[V]
	tail *lruNode[V]

	hits   int64
	misses int64

	now func() time.Time
}

// NewLRU creates an LRU with the given capacity and TTL.
// A non-positive capacity defaults to 10000; a non-positive TTL disables expiry.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruNode[V]),
		head:     &lruNode[V]{},
		tail:     &lruNode[V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	node, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.expired(node) {
		c.removeNode(node)
		c.misses++
		return zero, false
	}

	c.moveToFront(node)
	c.hits++
	return node.value, true
}

// Add inserts or replaces key, evicting the least recently used entry when full.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(key, value)
}

// Modify applies fn to the value of key in place. It returns false when
// the key is absent or expired. Recency is not changed.
func (c *LRU[V]) Modify(key string, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		return false
	}
	if c.expired(node) {
		c.removeNode(node)
		return false
	}
	node.value = fn(node.value)
	return true
}

// ModifyPrefix applies fn to every live entry whose key has prefix and
// returns how many were modified.
func (c *LRU[V]) ModifyPrefix(prefix string, fn func(V) V) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	modified := 0
	for node := c.head.next; node != c.tail; {
		next := node.next
		if strings.HasPrefix(node.key, prefix) {
			if c.expired(node) {
				c.removeNode(node)
			} else {
				node.value = fn(node.value)
				modified++
			}
		}
		node = next
	}
	return modified
}

// IsDuplicate reports whether key is already present. When it is not,
// the key is recorded with value.
func (c *LRU[V]) IsDuplicate(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		if !c.expired(node) {
			c.moveToFront(node)
			c.hits++
			return true
		}
		c.removeNode(node)
	}

	c.addLocked(key, value)
	c.misses++
	return false
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		c.removeNode(node)
		return true
	}
	return false
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every entry.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruNode[V])
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl == 0 {
		return 0
	}
	removed := 0
	for node := c.tail.prev; node != c.head; {
		prev := node.prev
		if c.expired(node) {
			c.removeNode(node)
			removed++
		}
		node = prev
	}
	return removed
}

// Stats returns hit and miss counters and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

func (c *LRU[V]) addLocked(key string, value V) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if node, ok := c.items[key]; ok {
		node.value = value
		node.expiresAt = expiresAt
		c.moveToFront(node)
		return
	}

	node := &lruNode[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(node)
	c.items[key] = node

	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest == c.head {
			break
		}
		c.removeNode(oldest)
	}
}

func (c *LRU[V]) expired(node *lruNode[V]) bool {
	return !node.expiresAt.IsZero() && c.now().After(node.expiresAt)
}

func (c *LRU[V]) addToFront(node *lruNode[V]) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *LRU[V]) moveToFront(node *lruNode[V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	c.addToFront(node)
}

func (c *LRU[V]) removeNode(node *lruNode[V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	delete(c.items, node.key)
}
