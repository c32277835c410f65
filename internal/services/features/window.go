package features

import (
	"fmt"

	"AutoTrade/internal/domain/models"
)

// DefaultLookback is the number of trailing closes fed to the predictor.
const DefaultLookback = 60

// Windows is the output of BuildWindows. Scaler is the instance fit on Dataset
// and must be used to invert predictions made on Inference.
type Windows struct {
	Scaler    *MinMaxScaler
	Dataset   models.Dataset
	Inference []float64
}

// BuildWindows scales closes and slices them into lookback windows.
// It needs at least lookback+1 closes and produces len(closes)-lookback pairs.
func BuildWindows(closes []float64, lookback int) (*Windows, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("lookback must be positive, got %d: %w", lookback, models.ErrComputationFailure)
	}
	if len(closes) < lookback+1 {
		return nil, fmt.Errorf("have %d closes, need %d: %w", len(closes), lookback+1, models.ErrInsufficientHistory)
	}

	sc := &MinMaxScaler{}
	sc.Fit(closes)
	scaled := sc.TransformAll(closes)

	n := len(scaled) - lookback
	ds := models.Dataset{
		Lookback: lookback,
		Windows:  make([][]float64, n),
		Targets:  make([]float64, n),
	}
	for i := lookback; i < len(scaled); i++ {
		w := make([]float64, lookback)
		copy(w, scaled[i-lookback:i])
		ds.Windows[i-lookback] = w
		ds.Targets[i-lookback] = scaled[i]
	}

	inf := make([]float64, lookback)
	copy(inf, scaled[len(scaled)-lookback:])

	return &Windows{Scaler: sc, Dataset: ds, Inference: inf}, nil
}
