package bitcask

import (
	"bytes"
	"testing"
)

func TestLRUCacheGetPut(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("1"))
	v, ok := c.get("a")
	if !ok || !bytes.Equal(v, []byte("1")) {
		t.Fatalf("get(a) = %v, %v", v, ok)
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	c.get("a") // a is now more recently used than b
	c.put("c", []byte("3"))

	if _, ok := c.get("b"); ok {
		t.Fatal("expected b to have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected a to still be cached")
	}
	if _, ok := c.get("c"); !ok {
		t.Fatal("expected c to still be cached")
	}
	if c.len() != 2 {
		t.Fatalf("cache has %d entries, want 2", c.len())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []byte("1"))
	c.delete("a")
	if _, ok := c.get("a"); ok {
		t.Fatal("expected a to be gone after delete")
	}
}

func TestLRUCacheZeroCapacity(t *testing.T) {
	c := newLRUCache(0)
	c.put("a", []byte("1"))
	if _, ok := c.get("a"); ok {
		t.Fatal("zero-capacity cache should never retain entries")
	}
}
