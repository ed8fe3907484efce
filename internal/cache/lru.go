// Package cache implements a capacity-bounded LRU byte cache and the
// thumbnail specialization built on top of it.
package cache

import (
	"container/list"
	"time"
)

type entry struct {
	key        string
	value      []byte
	accessedAt time.Time
}

// LRU is a key-addressed byte store bounded by both an aggregate byte size
// and an item count. Both limits are enforced on every Put. Recency is
// promotion order, not timestamp order, so same-instant accesses stay
// unambiguous.
//
// LRU is not safe for concurrent use; callers that share one across
// goroutines must wrap it with a mutex (ThumbnailCache does).
type LRU struct {
	maxBytes int64
	maxItems int

	ll    *list.List
	index map[string]*list.Element
	size  int64
}

// NewLRU creates a cache bounded by maxBytes aggregate payload size and
// maxItems entries.
func NewLRU(maxBytes int64, maxItems int) *LRU {
	return &LRU{
		maxBytes: maxBytes,
		maxItems: maxItems,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get returns the cached payload for key and promotes it to
// most-recently-used. The second return reports whether the key was present.
func (c *LRU) Get(key string) ([]byte, bool) {
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	ent := el.Value.(*entry)
	ent.accessedAt = time.Now()
	return ent.value, true
}

// Put inserts value under key as the most-recently-used entry. An existing
// entry under the same key is evicted first so size bookkeeping stays
// consistent. Least-recently-used entries are then evicted until both limits
// hold or the store is empty; the empty-store stop guards against a single
// oversized entry looping forever.
func (c *LRU) Put(key string, value []byte) {
	if el, ok := c.index[key]; ok {
		c.removeElement(el)
	}

	need := int64(len(value))
	for c.ll.Len() > 0 && (c.size+need > c.maxBytes || c.ll.Len()+1 > c.maxItems) {
		c.removeElement(c.ll.Back())
	}

	el := c.ll.PushFront(&entry{key: key, value: value, accessedAt: time.Now()})
	c.index[key] = el
	c.size += need
}

// Remove deletes key if present.
func (c *LRU) Remove(key string) {
	if el, ok := c.index[key]; ok {
		c.removeElement(el)
	}
}

// Clear drops every entry.
func (c *LRU) Clear() {
	c.ll.Init()
	c.index = make(map[string]*list.Element)
	c.size = 0
}

// TrimToSize evicts least-recently-used entries until the aggregate payload
// size is at most target. Used under memory-pressure signals.
func (c *LRU) TrimToSize(target int64) {
	for c.size > target && c.ll.Len() > 0 {
		c.removeElement(c.ll.Back())
	}
}

// Size returns the aggregate payload size in bytes.
func (c *LRU) Size() int64 {
	return c.size
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	return c.ll.Len()
}

func (c *LRU) removeElement(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.index, ent.key)
	c.size -= int64(len(ent.value))
}
