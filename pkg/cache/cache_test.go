package cache

import (
	"strings"
	"testing"
)

func TestNullCache(t *testing.T) {
	c := NewNullCache[string, int]()

	// Get always returns miss
	v, hit := c.Get("key")
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if v != 0 {
		t.Error("NullCache.Get should return the zero value")
	}

	// Set does nothing
	c.Set("key", 42)

	// Still a miss after Set
	if _, hit = c.Get("key"); hit {
		t.Error("NullCache should not store data")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}

	c.Delete("key")
	c.Purge()
}

func TestLRUCache(t *testing.T) {
	c, err := NewLRU[string, int](2)
	if err != nil {
		t.Fatalf("NewLRU error: %v", err)
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if v, hit := c.Get("a"); !hit || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, hit)
	}

	// "b" is now least recently used and gets evicted
	c.Set("c", 3)
	if _, hit := c.Get("b"); hit {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Delete("a")
	if _, hit := c.Get("a"); hit {
		t.Error("a should be deleted")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
}

func TestLRUDefaultSize(t *testing.T) {
	c, err := NewLRU[int, int](0)
	if err != nil {
		t.Fatalf("NewLRU(0) error: %v", err)
	}
	for i := 0; i < DefaultSize+10; i++ {
		c.Set(i, i)
	}
	if c.Len() != DefaultSize {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultSize)
	}
}

func TestHashKey(t *testing.T) {
	k1 := HashKey("layout", "fitColumns", 800)
	k2 := HashKey("layout", "fitColumns", 801)
	if k1 == k2 {
		t.Error("Different parts should produce different keys")
	}
	if !strings.HasPrefix(k1, "layout:") {
		t.Errorf("HashKey should be prefixed: %s", k1)
	}
	if HashKey("layout", "fitColumns", 800) != k1 {
		t.Error("HashKey should be deterministic")
	}
	if got := len(k1); got != len("layout:")+keyHashLen {
		t.Errorf("len(HashKey()) = %d, want %d", got, len("layout:")+keyHashLen)
	}
	if HashKey("a", "bc") == HashKey("a", "b", "c") {
		t.Error("part boundaries should affect the key")
	}
}
