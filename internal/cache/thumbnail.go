package cache

import "sync"

const thumbKeyPrefix = "thumb_"

// ThumbnailCache stores decrypted thumbnail bytes keyed by document id. It is
// a thin specialization over LRU: it builds the cache keys, adds hit/miss
// accounting, and serializes access with a mutex. It has no eviction logic of
// its own.
type ThumbnailCache struct {
	mu     sync.Mutex
	lru    *LRU
	hits   uint64
	misses uint64
}

// NewThumbnailCache creates a thumbnail cache bounded by maxBytes and
// maxItems.
func NewThumbnailCache(maxBytes int64, maxItems int) *ThumbnailCache {
	return &ThumbnailCache{lru: NewLRU(maxBytes, maxItems)}
}

func thumbKey(documentID string) string {
	return thumbKeyPrefix + documentID
}

// Get returns the cached thumbnail for a document, recording a hit or miss.
func (t *ThumbnailCache) Get(documentID string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, ok := t.lru.Get(thumbKey(documentID))
	if ok {
		t.hits++
	} else {
		t.misses++
	}
	return data, ok
}

// Put stores the decrypted thumbnail bytes for a document.
func (t *ThumbnailCache) Put(documentID string, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.Put(thumbKey(documentID), data)
}

// Invalidate drops the cached thumbnail for a document, e.g. when the
// document is deleted or its thumbnail replaced.
func (t *ThumbnailCache) Invalidate(documentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.Remove(thumbKey(documentID))
}

// Clear drops all cached thumbnails. Counters are kept; they are cumulative
// for the process lifetime.
func (t *ThumbnailCache) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.Clear()
}

// TrimToSize evicts thumbnails until the aggregate size is at most target.
func (t *ThumbnailCache) TrimToSize(target int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.TrimToSize(target)
}

// Stats returns the cumulative hit and miss counters.
func (t *ThumbnailCache) Stats() (hits, misses uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.misses
}

// HitRate returns the cumulative hit rate as a percentage in [0, 100].
// It returns 0 before any lookup has happened.
func (t *ThumbnailCache) HitRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.hits + t.misses
	if total == 0 {
		return 0
	}
	return float64(t.hits) / float64(total) * 100
}
