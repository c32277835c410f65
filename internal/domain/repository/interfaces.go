package repository

import (
	"context"
	"time"

	"AutoTrade/internal/domain/models"
)

// MarketDataSource returns the recent OHLC history of a symbol, or fails.
type MarketDataSource interface {
	Name() string
	FetchSeries(ctx context.Context, symbol string) (*models.Series, error)
	Health(ctx context.Context) error
}

// SeriesStore is a time-bounded cache of fetched series keyed by normalized symbol.
type SeriesStore interface {
	// Get returns the entry only if now-fetchedAt < TTL.
	Get(ctx context.Context, symbol string, now time.Time) (*models.Series, time.Time, bool)
	// Put overwrites the entry unconditionally.
	Put(ctx context.Context, symbol string, s *models.Series, fetchedAt time.Time) error
	Len(ctx context.Context) int
}

// EventSink receives assembled predictions for downstream consumers.
type EventSink interface {
	Process(ctx context.Context, r *models.PredictionResult) error
}

// Publisher ships predictions to an external broker.
type Publisher interface {
	Publish(ctx context.Context, r *models.PredictionResult) error
	PublishBatch(ctx context.Context, rs []*models.PredictionResult) error
	Close() error
}

type Metrics interface {
	RecordPrediction(symbol string, source models.DataSource, direction models.Direction)
	RecordFinalSignal(symbol string, direction models.Direction)
	RecordCacheLookup(hit bool)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
