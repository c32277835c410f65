package service

import (
	"context"

	"AutoTrade/internal/domain/models"
)

// SequencePredictor trains a next-step model over normalized lookback windows.
// Models are per request and never reused across requests or symbols.
type SequencePredictor interface {
	Name() string
	Ready(ctx context.Context) error
	Fit(ctx context.Context, ds models.Dataset) (TrainedModel, error)
}

// TrainedModel predicts the next normalized value from a window of length Lookback.
type TrainedModel interface {
	PredictNext(ctx context.Context, window []float64) (float64, error)
}
