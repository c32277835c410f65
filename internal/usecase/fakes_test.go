package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"AutoTrade/internal/domain/models"
	domsvc "AutoTrade/internal/domain/service"
	"AutoTrade/internal/repository"
	icache "AutoTrade/internal/service/cache"
	"AutoTrade/internal/services/signal"
	"AutoTrade/internal/services/synthetic"
	"AutoTrade/pkg/metrics"
)

var errBoom = errors.New("boom")

// priceSeries builds n one-minute bars whose closes span [90, 110] and end at 100,
// so a scaled prediction v maps back to 90 + 20v.
func priceSeries(symbol string, n int, end time.Time) *models.Series {
	bars := make([]models.Bar, n)
	start := end.Add(-time.Duration(n-1) * time.Minute)
	for i := range bars {
		c := 100.0
		switch i {
		case 0:
			c = 90
		case 1:
			c = 110
		}
		bars[i] = models.Bar{Time: start.Add(time.Duration(i) * time.Minute), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return &models.Series{Symbol: symbol, Bars: bars}
}

func scaledFor(price float64) float64 { return (price - 90) / 20 }

type fakeSource struct {
	mu     sync.Mutex
	series *models.Series
	err    error
	calls  int
	seen   []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSeries(_ context.Context, symbol string) (*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seen = append(f.seen, symbol)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.series
	cp.Bars = append([]models.Bar(nil), f.series.Bars...)
	return &cp, nil
}

func (f *fakeSource) Health(context.Context) error { return f.err }

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type slowSource struct{ fakeSource }

func (s *slowSource) FetchSeries(ctx context.Context, _ string) (*models.Series, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakePredictor returns next for every window.
type fakePredictor struct {
	next   float64
	fitErr error
	panics bool
}

func (p *fakePredictor) Name() string { return "fake" }
func (p *fakePredictor) Ready(context.Context) error { return nil }

func (p *fakePredictor) Fit(_ context.Context, ds models.Dataset) (domsvc.TrainedModel, error) {
	if p.panics {
		panic("model exploded")
	}
	if p.fitErr != nil {
		return nil, p.fitErr
	}
	return fakeModel{next: p.next, lookback: ds.Lookback}, nil
}

type fakeModel struct {
	next     float64
	lookback int
}

func (m fakeModel) PredictNext(_ context.Context, w []float64) (float64, error) {
	if len(w) != m.lookback {
		return 0, errBoom
	}
	return m.next, nil
}

type recordingSink struct {
	mu  sync.Mutex
	got []*models.PredictionResult
}

func (s *recordingSink) Process(_ context.Context, r *models.PredictionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r)
	return nil
}

type fixture struct {
	src  *fakeSource
	pred *fakePredictor
	sink *recordingSink
	acq  *DataAcquirer
	svc  *PredictionService
	now  time.Time
}

const testLookback = 10

func newFixture(src *fakeSource) *fixture {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	f := &fixture{src: src, pred: &fakePredictor{next: scaledFor(100)}, sink: &recordingSink{}, now: now}

	store := repository.NewCachedSeriesStore(icache.NewTTLCache(), "t:", time.Hour)
	opts := []AcquirerOption{
		WithMinLength(testLookback + 1),
		WithAcquirerClock(func() time.Time { return f.now }),
	}
	// a typed nil would not disable the live tier
	if src != nil {
		f.acq = NewDataAcquirer(src, store, synthetic.New(synthetic.WithSeed(7)), metrics.Nop{}, opts...)
	} else {
		f.acq = NewDataAcquirer(nil, store, synthetic.New(synthetic.WithSeed(7)), metrics.Nop{}, opts...)
	}
	f.svc = NewPredictionService(
		f.acq, f.pred,
		signal.NewConfirmationBuffer(signal.DefaultPolicy()),
		NewAssembler(100, 90),
		f.sink, metrics.Nop{}, nil,
		testLookback, time.Second,
	)
	return f
}
