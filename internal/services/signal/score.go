package signal

import (
	"fmt"
	"math"

	"AutoTrade/internal/domain/models"
)

// FullConfidenceMovePct is the move size at which confidence saturates.
const FullConfidenceMovePct = 2.0

// Score is the raw assessment of one prediction.
type Score struct {
	MovePct    float64
	Confidence float64
	Direction  models.Direction
}

// Evaluate scores a predicted price against the current one.
// BUY requires predicted > current; a tie is SELL.
func Evaluate(predicted, current float64) (Score, error) {
	if !(current > 0) || math.IsInf(current, 0) {
		return Score{}, fmt.Errorf("current price %v: %w", current, models.ErrComputationFailure)
	}
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
		return Score{}, fmt.Errorf("predicted price %v: %w", predicted, models.ErrComputationFailure)
	}

	move := math.Abs(predicted-current) / current * 100
	dir := models.DirectionSell
	if predicted > current {
		dir = models.DirectionBuy
	}
	return Score{
		MovePct:    move,
		Confidence: math.Min(100, move*100/FullConfidenceMovePct),
		Direction:  dir,
	}, nil
}
