package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("ollama:m", "steel bolts")
	assert.Equal(t, a, CacheKey("ollama:m", "steel bolts"))
	assert.NotEqual(t, a, CacheKey("genai:m", "steel bolts"))
	assert.NotEqual(t, a, CacheKey("ollama:m", "steel nuts"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c := NewMemoryCache(4, time.Minute)
		require.NoError(t, c.Set(ctx, "k", []float32{1, 2}))

		vec, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []float32{1, 2}, vec)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewMemoryCache(4, time.Minute)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Set(ctx, "k", []float32{1}))

		now = now.Add(2 * time.Minute)
		_, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, c.Len())
	})

	t.Run("bounded size", func(t *testing.T) {
		c := NewMemoryCache(2, 0)
		require.NoError(t, c.Set(ctx, "a", []float32{1}))
		require.NoError(t, c.Set(ctx, "b", []float32{2}))
		require.NoError(t, c.Set(ctx, "c", []float32{3}))

		assert.Equal(t, 2, c.Len())
		_, ok, _ := c.Get(ctx, "c")
		assert.True(t, ok)
	})

	t.Run("overwrite does not evict", func(t *testing.T) {
		c := NewMemoryCache(2, 0)
		require.NoError(t, c.Set(ctx, "a", []float32{1}))
		require.NoError(t, c.Set(ctx, "b", []float32{2}))
		require.NoError(t, c.Set(ctx, "a", []float32{9}))

		assert.Equal(t, 2, c.Len())
		vec, _, _ := c.Get(ctx, "a")
		assert.Equal(t, []float32{9}, vec)
	})
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.ErrorContains(t, err, "corrupt embedding")
}
