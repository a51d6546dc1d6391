package bitcask

import "container/list"

// lruCache is the bounded hot-value cache interposed between Store callers
// and the log. Access (Get or Put) counts as use; overflow evicts the
// least-recently-accessed entry.
//
// Grounded on dd0wney-graphdb's pkg/lsm.BlockCache and the NASP pack's
// lruCache.LruCache: a map[string]*list.Element paired with a list.List
// ordered most-recently-used to least.
type lruCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key   string
	value []byte
}

func newLRUCache(capacity int) *lruCache {
	if capacity < 0 {
		capacity = 0
	}
	return &lruCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// get returns the cached value for key and marks it most-recently-used.
func (c *lruCache) get(key string) ([]byte, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

// put inserts or updates key's cached value, marking it
// most-recently-used, and evicts the least-recently-used entry if the
// cache is now over capacity.
func (c *lruCache) put(key string, value []byte) {
	if c.capacity == 0 {
		return
	}
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = elem

	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// delete removes key from the cache, if present.
func (c *lruCache) delete(key string) {
	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

func (c *lruCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}

func (c *lruCache) len() int {
	return c.order.Len()
}
