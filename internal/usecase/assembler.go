package usecase

import (
	"fmt"
	"time"

	"AutoTrade/internal/domain/models"
	"AutoTrade/internal/services/signal"
	"AutoTrade/pkg/util"

	"github.com/google/uuid"
)

const maxErrorRunes = 200

// Assembler renders prediction results for API and stream consumers.
type Assembler struct {
	chartPoints     int
	confidenceLimit float64
	loc             *time.Location
	now             func() time.Time
}

func NewAssembler(chartPoints int, confidenceLimit float64) *Assembler {
	if chartPoints <= 0 {
		chartPoints = 100
	}
	return &Assembler{chartPoints: chartPoints, confidenceLimit: confidenceLimit, now: time.Now}
}

// WithLocation renders timestamps in loc instead of the process zone.
func (a *Assembler) WithLocation(loc *time.Location) *Assembler {
	a.loc = loc
	return a
}

func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Outcome carries everything a successful prediction produced.
type Outcome struct {
	Acquisition Acquisition
	Frame       *models.IndicatorFrame
	Predicted   float64
	Score       signal.Score
	FinalSignal bool
	History     []models.Direction
}

// Success builds the result for a completed prediction.
func (a *Assembler) Success(o Outcome, shape models.ChartShape) *models.PredictionResult {
	last := o.Frame.Rows[len(o.Frame.Rows)-1]
	history := o.History
	if history == nil {
		history = []models.Direction{}
	}
	return &models.PredictionResult{
		ID:             uuid.NewString(),
		Symbol:         o.Acquisition.Symbol,
		CurrentPrice:   last.Close,
		PredictedPrice: o.Predicted,
		Direction:      o.Score.Direction,
		Confidence:     o.Score.Confidence,
		MovePct:        o.Score.MovePct,
		FinalSignal:    o.FinalSignal,
		StatusMessage:  a.status(o),
		ChartData:      a.Chart(o.Frame, shape),
		DataSource:     o.Acquisition.Source,
		SignalHistory:  history,
		LastUpdated:    util.FormatLocal(a.now(), a.loc),
	}
}

// Failure builds an ERROR result. All numeric fields are zero.
func (a *Assembler) Failure(symbol string, err error) *models.PredictionResult {
	msg := util.TruncateRunes(err.Error(), maxErrorRunes)
	return &models.PredictionResult{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		StatusMessage: "ERROR: " + msg,
		ChartData:     []models.OHLCPoint{},
		DataSource:    models.SourceError,
		SignalHistory: []models.Direction{},
		LastUpdated:   util.FormatLocal(a.now(), a.loc),
		Error:         msg,
	}
}

// Chart returns at most chartPoints trailing rows in the requested shape.
func (a *Assembler) Chart(f *models.IndicatorFrame, shape models.ChartShape) interface{} {
	rows := f.Tail(a.chartPoints)
	if shape == models.ChartLine {
		pts := make([]models.LinePoint, len(rows))
		for i, r := range rows {
			pts[i] = models.LinePoint{
				Timestamp: util.FormatLocal(r.Time, a.loc),
				Price:     r.Close,
				SMA:       r.SMA,
				RSI:       r.RSI,
			}
		}
		return pts
	}
	pts := make([]models.OHLCPoint, len(rows))
	for i, r := range rows {
		pts[i] = models.OHLCPoint{
			Timestamp: util.FormatLocal(r.Time, a.loc),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
		}
	}
	return pts
}

// Timestamp renders t the way results do.
func (a *Assembler) Timestamp(t time.Time) string { return util.FormatLocal(t, a.loc) }

func (a *Assembler) status(o Outcome) string {
	switch {
	case o.Acquisition.Source == models.SourceMock:
		return fmt.Sprintf("⚠️ USING MOCK DATA\nReason: %s", o.Acquisition.Reason)
	case o.FinalSignal:
		return fmt.Sprintf("🔥 FINAL SIGNAL: %g%% CONFIRMED", a.confidenceLimit)
	default:
		return "⏳ WAIT - No strong confirmation"
	}
}
