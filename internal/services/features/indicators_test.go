package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoTrade/internal/domain/models"
)

func seriesFromCloses(closes []float64) *models.Series {
	start := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{Time: start.Add(time.Duration(i) * time.Minute), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1}
	}
	return &models.Series{Symbol: "TEST", Bars: bars}
}

func TestComputeIndicatorsWarmupRows(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))*3
	}
	f := ComputeIndicators(seriesFromCloses(closes))
	require.Len(t, f.Rows, 50)

	for i := 0; i < SMAPeriod-1; i++ {
		assert.Equal(t, Neutral, f.Rows[i].SMA, "sma row %d", i)
	}
	for i := 0; i < RSIPeriod; i++ {
		assert.Equal(t, Neutral, f.Rows[i].RSI, "rsi row %d", i)
	}
	for i, r := range f.Rows {
		assert.False(t, math.IsNaN(r.SMA) || math.IsInf(r.SMA, 0), "sma row %d", i)
		assert.False(t, math.IsNaN(r.RSI) || math.IsInf(r.RSI, 0), "rsi row %d", i)
	}
	assert.NotEqual(t, Neutral, f.Rows[SMAPeriod-1].SMA)
}

func TestRollingSMA(t *testing.T) {
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	sma := RollingSMA(closes, 20)
	assert.InDelta(t, 10.5, sma[19], 1e-12)
	assert.InDelta(t, 11.5, sma[20], 1e-12)
}

func TestRollingRSI(t *testing.T) {
	// alternating +2/-1 deltas: 7 gains of 2, 7 losses of 1 in any 14-delta window
	closes := []float64{100}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+2)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	rsi := RollingRSI(closes, 14)
	// gain/loss = 14/7 = 2, rsi = 100 - 100/3
	assert.InDelta(t, 100-100.0/3, rsi[14], 1e-9)
	assert.InDelta(t, 100-100.0/3, rsi[20], 1e-9)
}

func TestRollingRSIZeroLossIsNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	for _, v := range RollingRSI(closes, 14) {
		assert.Equal(t, Neutral, v)
	}
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	f := ComputeIndicators(seriesFromCloses([]float64{1, 2, 3}))
	require.Len(t, f.Rows, 3)
	for _, r := range f.Rows {
		assert.Equal(t, Neutral, r.SMA)
		assert.Equal(t, Neutral, r.RSI)
	}
}
