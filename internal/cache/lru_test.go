package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetMiss(t *testing.T) {
	c := NewLRU(100, 10)

	_, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUPutAndGet(t *testing.T) {
	c := NewLRU(100, 10)

	c.Put("a", []byte("hello"))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, 1, c.Len())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(1000, 2)

	// Reading a promotes it; inserting d must then evict b, not a.
	c.Put("a", []byte("aa"))
	c.Put("b", []byte("bb"))
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Put("d", []byte("dd"))

	_, ok = c.Get("a")
	assert.True(t, ok, "recently read entry must survive")
	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry must be evicted")
	_, ok = c.Get("d")
	assert.True(t, ok)
}

func TestLRUByteLimitInvariant(t *testing.T) {
	c := NewLRU(10, 100)

	for i := 0; i < 20; i++ {
		c.Put(fmt.Sprintf("k%d", i), []byte("abc"))
		assert.LessOrEqual(t, c.Size(), int64(10))
		assert.LessOrEqual(t, c.Len(), 100)
	}
	// 10 bytes / 3-byte entries leaves room for three.
	assert.Equal(t, 3, c.Len())
}

func TestLRUItemLimitInvariant(t *testing.T) {
	c := NewLRU(1000, 3)

	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), []byte{byte(i)})
		assert.LessOrEqual(t, c.Len(), 3)
	}
}

func TestLRUOversizedEntryKept(t *testing.T) {
	c := NewLRU(4, 10)

	c.Put("small", []byte("ab"))
	c.Put("big", []byte("oversized payload"))

	// The oversized entry empties the store and is then kept alone.
	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("big")
	require.True(t, ok)
	assert.Equal(t, []byte("oversized payload"), got)
}

func TestLRUPutSameKeyReplaces(t *testing.T) {
	c := NewLRU(100, 10)

	c.Put("a", []byte("aaaa"))
	c.Put("a", []byte("bb"))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(2), c.Size())
	got, _ := c.Get("a")
	assert.Equal(t, []byte("bb"), got)
}

func TestLRURemoveAndClear(t *testing.T) {
	c := NewLRU(100, 10)

	c.Put("a", []byte("aa"))
	c.Put("b", []byte("bb"))

	c.Remove("a")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(2), c.Size())

	c.Remove("missing") // no-op

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUTrimToSize(t *testing.T) {
	c := NewLRU(100, 10)

	c.Put("a", []byte("aaaa"))
	c.Put("b", []byte("bbbb"))
	c.Put("c", []byte("cccc"))

	c.TrimToSize(8)
	assert.Equal(t, int64(8), c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be trimmed first")

	c.TrimToSize(0)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Size())
}
