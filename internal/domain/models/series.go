package models

import (
	"fmt"
	"math"
	"time"
)

// Bar is a single OHLCV record.
type Bar struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// Series is an ordered OHLCV history for one symbol.
// Bars are strictly increasing by time with no duplicates.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the close column.
func (s *Series) Closes() []float64 {
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar.
func (s *Series) Last() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Validate checks the series is usable by the prediction pipeline.
func (s *Series) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("empty series: %w", ErrDataUnavailable)
	}
	for i, b := range s.Bars {
		for _, v := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("bar %d: missing or invalid ohlc value: %w", i, ErrDataUnavailable)
			}
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("bar %d: timestamps not strictly increasing: %w", i, ErrDataUnavailable)
		}
	}
	return nil
}

// IndicatorRow is a bar enriched with derived indicator values.
type IndicatorRow struct {
	Bar
	SMA float64
	RSI float64
}

// IndicatorFrame is a Series augmented with indicators, row-aligned with its source.
type IndicatorFrame struct {
	Symbol string
	Rows   []IndicatorRow
}

// Closes returns the close column of the frame.
func (f *IndicatorFrame) Closes() []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Close
	}
	return out
}

// Tail returns at most the last n rows.
func (f *IndicatorFrame) Tail(n int) []IndicatorRow {
	if n <= 0 || n >= len(f.Rows) {
		return f.Rows
	}
	return f.Rows[len(f.Rows)-n:]
}

// Dataset is the set of (window, target) training pairs built from one series.
type Dataset struct {
	Lookback int
	Windows  [][]float64
	Targets  []float64
}

// Len returns the number of training pairs.
func (d Dataset) Len() int { return len(d.Targets) }
