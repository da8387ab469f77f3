package registry

import (
	"container/list"
	"sync"
	"time"
)

// lruCache is a fixed-capacity, TTL-expiring cache for positive lookups
// only (spec §4.7: "negative results are not cached"). Adapted from the
// teacher's cache package idioms, trimmed to the single get/set/evict
// shape this client needs rather than a general-purpose LRU.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	items    map[string]*list.Element
}

type lruEntry struct {
	key       string
	mapping   Mapping
	expiresAt time.Time
}

func newLRUCache(capacity int, ttl time.Duration) *lruCache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (Mapping, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Mapping{}, false
	}
	entry := el.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.ll.Remove(el)
		delete(c.items, key)
		return Mapping{}, false
	}
	c.ll.MoveToFront(el)
	return entry.mapping, true
}

func (c *lruCache) set(key string, mapping Mapping) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).mapping = mapping
		el.Value.(*lruEntry).expiresAt = time.Now().Add(c.ttl)
		c.ll.MoveToFront(el)
		return
	}

	entry := &lruEntry{key: key, mapping: mapping, expiresAt: time.Now().Add(c.ttl)}
	el := c.ll.PushFront(entry)
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}
