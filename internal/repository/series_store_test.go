package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoTrade/internal/domain/models"
	icache "AutoTrade/internal/service/cache"
)

func testSeries(symbol string) *models.Series {
	t0 := time.Date(2024, 5, 6, 9, 15, 0, 0, time.UTC)
	return &models.Series{Symbol: symbol, Bars: []models.Bar{
		{Time: t0, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Time: t0.Add(time.Minute), Open: 10.5, High: 11.5, Low: 10, Close: 11, Volume: 120},
	}}
}

func TestCachedSeriesStoreFreshnessBoundary(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	s := NewCachedSeriesStore(icache.NewTTLCache(), "t:", ttl)

	written := time.Now()
	require.NoError(t, s.Put(ctx, "AAA", testSeries("AAA"), written))

	got, fetchedAt, ok := s.Get(ctx, "AAA", written.Add(ttl-time.Nanosecond))
	require.True(t, ok)
	assert.True(t, fetchedAt.Equal(written))
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 11.0, got.Bars[1].Close)

	_, _, ok = s.Get(ctx, "AAA", written.Add(ttl))
	assert.False(t, ok, "entry at exactly ttl is stale")

	_, _, ok = s.Get(ctx, "BBB", written)
	assert.False(t, ok)
}

func TestCachedSeriesStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCachedSeriesStore(icache.NewTTLCache(), "t:", time.Hour)
	now := time.Now()
	require.NoError(t, s.Put(ctx, "AAA", testSeries("AAA"), now))

	a, _, ok := s.Get(ctx, "AAA", now)
	require.True(t, ok)
	a.Bars[0].Close = -1

	b, _, ok := s.Get(ctx, "AAA", now)
	require.True(t, ok)
	assert.Equal(t, 10.5, b.Bars[0].Close)
}

func TestCachedSeriesStoreOverwriteAndLen(t *testing.T) {
	ctx := context.Background()
	c := icache.NewTTLCache()
	s := NewCachedSeriesStore(c, "t:", time.Hour)
	now := time.Now()

	require.NoError(t, s.Put(ctx, "AAA", testSeries("AAA"), now.Add(-2*time.Hour)))
	_, _, ok := s.Get(ctx, "AAA", now)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "AAA", testSeries("AAA"), now))
	require.NoError(t, s.Put(ctx, "BBB", testSeries("BBB"), now))
	require.NoError(t, c.SetBytes(ctx, "other", []byte("x"), 0))

	_, _, ok = s.Get(ctx, "AAA", now)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Len(ctx))
}

func TestCachedSeriesStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c := icache.NewTTLCache()
	require.NoError(t, c.SetBytes(ctx, "t:AAA", []byte("{not json"), 0))
	s := NewCachedSeriesStore(c, "t:", time.Hour)
	_, _, ok := s.Get(ctx, "AAA", time.Now())
	assert.False(t, ok)
}
