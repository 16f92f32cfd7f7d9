package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the entry limit used when a non-positive size is requested.
const DefaultSize = 1024

// LRUCache is a bounded cache that evicts the least recently used entry.
type LRUCache[K comparable, V any] struct {
	inner *lru.Cache[K, V]
}

// NewLRU creates an LRU cache holding at most size entries.
// A non-positive size falls back to DefaultSize.
func NewLRU[K comparable, V any](size int) (Cache[K, V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache[K, V]{inner: inner}, nil
}

// Get returns the cached value and marks it as recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

// Set stores a value.
func (c *LRUCache[K, V]) Set(key K, value V) {
	c.inner.Add(key, value)
}

// Delete removes a key.
func (c *LRUCache[K, V]) Delete(key K) {
	c.inner.Remove(key)
}

// Purge removes every entry.
func (c *LRUCache[K, V]) Purge() {
	c.inner.Purge()
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	return c.inner.Len()
}
