package synthetic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	end := time.Date(2024, 3, 4, 10, 30, 42, 0, time.UTC)
	s := New().Generate("XYZ", end)

	require.Equal(t, DefaultBars, s.Len())
	require.NoError(t, s.Validate())
	assert.Equal(t, "XYZ", s.Symbol)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, end.Truncate(time.Minute), last.Time)
	assert.Equal(t, DefaultSeedPrice, s.Bars[0].Open)

	for i, b := range s.Bars {
		assert.LessOrEqual(t, b.Low, b.Open, "bar %d", i)
		assert.LessOrEqual(t, b.Low, b.Close, "bar %d", i)
		assert.GreaterOrEqual(t, b.High, b.Open, "bar %d", i)
		assert.GreaterOrEqual(t, b.High, b.Close, "bar %d", i)
		assert.LessOrEqual(t, b.Close-b.Open, DefaultMaxMove+1e-9)
		assert.Equal(t, DefaultVolume, b.Volume)
		if i > 0 {
			assert.Equal(t, time.Minute, b.Time.Sub(s.Bars[i-1].Time))
		}
	}
}

func TestGenerateSeeded(t *testing.T) {
	end := time.Now()
	a := New(WithSeed(7), WithBars(120)).Generate("A", end)
	b := New(WithSeed(7), WithBars(120)).Generate("A", end)
	assert.Equal(t, a.Bars, b.Bars)
	assert.Equal(t, 120, a.Len())
}

func TestGenerateStaysPositive(t *testing.T) {
	s := New(WithSeed(1), WithSeedPrice(0.5), WithMaxMove(5)).Generate("LOW", time.Now())
	require.NoError(t, s.Validate())
}

func TestGenerateAtLeast(t *testing.T) {
	end := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	g := New(WithSeed(3), WithBars(50))

	assert.Equal(t, 50, g.GenerateAtLeast("A", end, 10).Len())

	s := g.GenerateAtLeast("A", end, 1001)
	require.Equal(t, 1001, s.Len())
	require.NoError(t, s.Validate())
	last, _ := s.Last()
	assert.Equal(t, end, last.Time)
}
