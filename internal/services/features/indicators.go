package features

import (
	"math"

	"AutoTrade/internal/domain/models"
)

const (
	// SMAPeriod is the trailing window of the close moving average.
	SMAPeriod = 20
	// RSIPeriod is the number of close-to-close deltas averaged by the oscillator.
	RSIPeriod = 14
	// Neutral fills warm-up rows and undefined values.
	Neutral = 0.0
)

// ComputeIndicators enriches a series with SMA and RSI columns.
// The frame has exactly one row per bar and never contains NaN or Inf.
func ComputeIndicators(s *models.Series) *models.IndicatorFrame {
	closes := s.Closes()
	sma := RollingSMA(closes, SMAPeriod)
	rsi := RollingRSI(closes, RSIPeriod)

	rows := make([]models.IndicatorRow, len(s.Bars))
	for i, b := range s.Bars {
		rows[i] = models.IndicatorRow{
			Bar: b,
			SMA: finiteOrNeutral(sma[i]),
			RSI: finiteOrNeutral(rsi[i]),
		}
	}
	return &models.IndicatorFrame{Symbol: s.Symbol, Rows: rows}
}

// RollingSMA returns the simple mean of the trailing `period` closes per row.
// Rows before the first full window are Neutral.
func RollingSMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// RollingRSI averages the gains and loss magnitudes of the trailing `period` deltas:
// rsi = 100 - 100/(1 + gain/loss). Rows 0..period-1 are Neutral, and so is any row
// whose average loss is zero.
func RollingRSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		gain /= float64(period)
		loss /= float64(period)
		if loss == 0 {
			out[i] = Neutral
			continue
		}
		out[i] = 100 - 100/(1+gain/loss)
	}
	return out
}

func finiteOrNeutral(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Neutral
	}
	return v
}
