// Package cache provides small in-memory caches used by the layout engine.
//
// Width computations are ephemeral: nothing here survives the process. The
// caches only avoid repeating pure work, such as measuring the display width of
// a cell string or redistributing an unchanged column set at an unchanged
// viewport width.
//
// # Implementations
//
//   - [NewLRU]: bounded least-recently-used cache backed by hashicorp/golang-lru
//   - [NewNullCache]: never stores anything; useful for tests or to disable caching
//
// Caches are safe for concurrent use, although the engine itself is single-writer.
package cache

// Cache is a key-value store for memoised results.
type Cache[K comparable, V any] interface {
	// Get returns the cached value and whether it was present.
	Get(key K) (V, bool)

	// Set stores a value, evicting older entries if the cache is full.
	Set(key K, value V)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key K)

	// Purge removes every entry.
	Purge()

	// Len returns the number of cached entries.
	Len() int
}
