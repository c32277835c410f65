package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "p:a", []byte("x"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "p:b", []byte("y"), 0))
	require.NoError(t, c.SetBytes(ctx, "q:c", []byte("z"), time.Minute))

	b, ok, err := c.GetBytes(ctx, "p:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), b)

	n, _ := c.Count(ctx, "p:")
	assert.Equal(t, 2, n)

	now = now.Add(time.Minute)
	_, ok, _ = c.GetBytes(ctx, "p:a")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "p:b")
	assert.True(t, ok, "zero ttl never expires")

	n, _ = c.Count(ctx, "p:")
	assert.Equal(t, 1, n)
}

func TestTTLCacheCopiesValue(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()
	v := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", v, 0))
	v[0] = 'z'
	b, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, []byte("abc"), b)
}
