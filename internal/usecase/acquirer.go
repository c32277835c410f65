package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AutoTrade/internal/domain/models"
	drepo "AutoTrade/internal/domain/repository"
	"AutoTrade/internal/services/synthetic"
	applogger "AutoTrade/pkg/logger"
)

// Acquisition is a usable series plus the tier that produced it.
type Acquisition struct {
	Symbol    string
	Series    *models.Series
	Source    models.DataSource
	Reason    string // why the live tier was skipped; MOCK only
	FetchedAt time.Time
}

// DataAcquirer walks the cache, live and synthetic tiers in order.
// It never returns an empty series.
type DataAcquirer struct {
	source       drepo.MarketDataSource // nil means live data is disabled
	store        drepo.SeriesStore
	synth        *synthetic.Generator
	normalizer   drepo.SymbolNormalizer
	minLen       int
	fetchTimeout time.Duration
	metrics      drepo.Metrics
	l            *applogger.Logger
	now          func() time.Time
}

type AcquirerOption func(*DataAcquirer)

// WithMinLength sets the shortest live series accepted. Use lookback+1.
func WithMinLength(n int) AcquirerOption {
	return func(a *DataAcquirer) {
		if n > 0 {
			a.minLen = n
		}
	}
}

func WithFetchTimeout(d time.Duration) AcquirerOption {
	return func(a *DataAcquirer) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

func WithNormalizer(n drepo.SymbolNormalizer) AcquirerOption {
	return func(a *DataAcquirer) { a.normalizer = n }
}

func WithAcquirerClock(now func() time.Time) AcquirerOption {
	return func(a *DataAcquirer) { a.now = now }
}

func WithAcquirerLogger(l *applogger.Logger) AcquirerOption {
	return func(a *DataAcquirer) { a.l = l }
}

func NewDataAcquirer(
	source drepo.MarketDataSource,
	store drepo.SeriesStore,
	synth *synthetic.Generator,
	metrics drepo.Metrics,
	opts ...AcquirerOption,
) *DataAcquirer {
	a := &DataAcquirer{
		source:       source,
		store:        store,
		synth:        synth,
		minLen:       61,
		fetchTimeout: 10 * time.Second,
		metrics:      metrics,
		l:            applogger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Normalize qualifies a raw symbol the same way Acquire does.
func (a *DataAcquirer) Normalize(raw string) string { return a.normalizer.Normalize(raw) }

// Source returns the live source, or nil when live data is disabled.
func (a *DataAcquirer) Source() drepo.MarketDataSource { return a.source }

// SourceName reports the configured live source.
func (a *DataAcquirer) SourceName() string {
	if a.source == nil {
		return "mock"
	}
	return a.source.Name()
}

// SourceHealth checks the live source. A disabled source reports an error.
func (a *DataAcquirer) SourceHealth(ctx context.Context) error {
	if a.source == nil {
		return fmt.Errorf("live data disabled")
	}
	return a.source.Health(ctx)
}

// CacheSize returns the number of cached series.
func (a *DataAcquirer) CacheSize(ctx context.Context) int { return a.store.Len(ctx) }

// Acquire returns the best available series for the symbol.
func (a *DataAcquirer) Acquire(ctx context.Context, raw string) Acquisition {
	symbol := a.normalizer.Normalize(raw)
	now := a.now()

	if s, fetchedAt, ok := a.store.Get(ctx, symbol, now); ok && s.Len() >= a.minLen {
		a.metrics.RecordCacheLookup(true)
		return Acquisition{Symbol: symbol, Series: s, Source: models.SourceCache, FetchedAt: fetchedAt}
	}
	a.metrics.RecordCacheLookup(false)

	s, err := a.fetchLive(ctx, symbol)
	if err == nil {
		if perr := a.store.Put(ctx, symbol, s, now); perr != nil {
			a.l.Warn("series cache put failed", applogger.String("symbol", symbol), applogger.Error(perr))
		}
		return Acquisition{Symbol: symbol, Series: s, Source: models.SourceLive, FetchedAt: now}
	}

	a.metrics.RecordError("acquire_live")
	a.l.Warn("live data unavailable, using synthetic series",
		applogger.String("symbol", symbol),
		applogger.Error(err),
	)
	return Acquisition{
		Symbol:    symbol,
		Series:    a.synth.GenerateAtLeast(symbol, now, a.minLen),
		Source:    models.SourceMock,
		Reason:    err.Error(),
		FetchedAt: now,
	}
}

// Warm refreshes the cache for a symbol from the live source only.
func (a *DataAcquirer) Warm(ctx context.Context, raw string) error {
	symbol := a.normalizer.Normalize(raw)
	s, err := a.fetchLive(ctx, symbol)
	if err != nil {
		return err
	}
	return a.store.Put(ctx, symbol, s, a.now())
}

func (a *DataAcquirer) fetchLive(ctx context.Context, symbol string) (*models.Series, error) {
	if a.source == nil {
		return nil, fmt.Errorf("live data disabled: %w", models.ErrDataUnavailable)
	}
	fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	start := time.Now()
	s, err := a.source.FetchSeries(fctx, symbol)
	a.metrics.RecordLatency("fetch_"+a.source.Name(), time.Since(start).Seconds())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%s fetch timed out after %s: %w", a.source.Name(), a.fetchTimeout, models.ErrDataUnavailable)
	case err != nil:
		if errors.Is(err, models.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%s fetch: %v: %w", a.source.Name(), err, models.ErrDataUnavailable)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Len() < a.minLen {
		return nil, fmt.Errorf("got %d bars, need %d: %w", s.Len(), a.minLen, models.ErrInsufficientHistory)
	}
	s.Symbol = symbol
	return s, nil
}
