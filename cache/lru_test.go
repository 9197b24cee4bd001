package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string, int](2, 0)

	c.Set("a", 1)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the oldest
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRU_OverwriteKeepsSize(t *testing.T) {
	c := NewLRU[string, int](2, 0)
	c.Set("a", 1)
	c.Set("a", 2)

	got, _ := c.Get("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Size())
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[string, int](10, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)

	now = now.Add(30 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok, "entry should still be fresh")

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry should have expired")

	assert.Equal(t, 1, c.CleanExpired(), "b is the only stale entry left")
	assert.Equal(t, 0, c.Size())
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	c := NewLRU[int, string](4, 0)
	c.Set(1, "one")
	c.Set(2, "two")

	c.Delete(1)
	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Size())
}

func TestLRU_StructKeys(t *testing.T) {
	type key struct{ A, B float64 }
	c := NewLRU[key, float64](4, 0)

	c.Set(key{1, 2}, 3)
	got, ok := c.Get(key{1, 2})
	require.True(t, ok)
	assert.Equal(t, 3.0, got)
}
