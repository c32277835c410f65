// Package synthetic produces stand-in price history when no live data can be used.
package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"AutoTrade/internal/domain/models"
)

const (
	DefaultBars      = 1000
	DefaultSeedPrice = 150.0
	DefaultMaxMove   = 0.5
	DefaultVolume    = 100000.0

	minWiggle = 0.05
	maxWiggle = 0.3
	minPrice  = 0.01
)

// Generator builds driftless random-walk series of one-minute bars.
type Generator struct {
	bars      int
	seedPrice float64
	maxMove   float64
	volume    float64
	step      time.Duration
	rng       func() *rand.Rand
}

type Option func(*Generator)

func WithBars(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.bars = n
		}
	}
}

func WithSeedPrice(p float64) Option {
	return func(g *Generator) {
		if p > 0 {
			g.seedPrice = p
		}
	}
}

func WithMaxMove(m float64) Option {
	return func(g *Generator) {
		if m > 0 {
			g.maxMove = m
		}
	}
}

// WithSeed makes every generated series identical for the same end time.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		bars:      DefaultBars,
		seedPrice: DefaultSeedPrice,
		maxMove:   DefaultMaxMove,
		volume:    DefaultVolume,
		step:      time.Minute,
		rng: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Bars returns the length of generated series.
func (g *Generator) Bars() int { return g.bars }

// Generate returns a series whose last bar is stamped at end (truncated to the minute).
func (g *Generator) Generate(symbol string, end time.Time) *models.Series {
	return g.GenerateAtLeast(symbol, end, g.bars)
}

// GenerateAtLeast is Generate with the length raised to n when n exceeds the configured bar count.
func (g *Generator) GenerateAtLeast(symbol string, end time.Time, n int) *models.Series {
	n = max(n, g.bars)
	r := g.rng()
	end = end.Truncate(g.step)
	start := end.Add(-time.Duration(n-1) * g.step)

	bars := make([]models.Bar, n)
	price := g.seedPrice
	for i := range bars {
		open := price
		price = math.Max(minPrice, price+(r.Float64()*2-1)*g.maxMove)
		hi := math.Max(open, price) + minWiggle + r.Float64()*(maxWiggle-minWiggle)
		lo := math.Max(minPrice, math.Min(open, price)-minWiggle-r.Float64()*(maxWiggle-minWiggle))
		bars[i] = models.Bar{
			Time:   start.Add(time.Duration(i) * g.step),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: g.volume,
		}
	}
	return &models.Series{Symbol: symbol, Bars: bars}
}
