package cache

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache[K comparable, V any] struct{}

// NewNullCache creates a null cache.
func NewNullCache[K comparable, V any]() Cache[K, V] {
	return &NullCache[K, V]{}
}

// Get always returns a cache miss.
func (c *NullCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set does nothing.
func (c *NullCache[K, V]) Set(key K, value V) {}

// Delete does nothing.
func (c *NullCache[K, V]) Delete(key K) {}

// Purge does nothing.
func (c *NullCache[K, V]) Purge() {}

// Len is always zero.
func (c *NullCache[K, V]) Len() int { return 0 }

// Ensure the implementations satisfy Cache.
var (
	_ Cache[string, int] = (*NullCache[string, int])(nil)
	_ Cache[string, int] = (*LRUCache[string, int])(nil)
)
