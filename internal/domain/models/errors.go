package models

import "errors"

// Failure classes of the prediction pipeline.
// Adapters wrap their underlying errors with one of these.
var (
	// ErrDataUnavailable: live fetch failed, returned nothing, or returned unusable bars.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrInsufficientHistory: series shorter than lookback+1.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrComputationFailure: indicators, windowing, fit or predict failed.
	ErrComputationFailure = errors.New("prediction computation failed")
)
