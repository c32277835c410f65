package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"AutoTrade/internal/domain/models"
	drepo "AutoTrade/internal/domain/repository"
	"AutoTrade/pkg/util"
)

// MinPollInterval is the fastest refresh the poller allows.
const MinPollInterval = 500 * time.Millisecond

// Quote is one observation printed by the poller. OK is false when the source had no data.
type Quote struct {
	Time  time.Time
	Price float64
	Note  string
	OK    bool
}

type QuoteFunc func(ctx context.Context, symbol string) (Quote, error)

// Poller prints the latest quote of a symbol every interval until stopped.
type Poller struct {
	fetch    QuoteFunc
	symbol   string
	interval time.Duration
	out      io.Writer
	inPlace  bool
	loc      *time.Location
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

type PollerOption func(*Poller)

// WithInPlace rewrites the same terminal line instead of appending lines.
func WithInPlace(b bool) PollerOption { return func(p *Poller) { p.inPlace = b } }

func WithPollerClock(now func() time.Time) PollerOption { return func(p *Poller) { p.now = now } }

func WithPollerLocation(loc *time.Location) PollerOption { return func(p *Poller) { p.loc = loc } }

func NewPoller(fetch QuoteFunc, symbol string, interval time.Duration, out io.Writer, opts ...PollerOption) *Poller {
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	p := &Poller{
		fetch:    fetch,
		symbol:   symbol,
		interval: interval,
		out:      out,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Interval() time.Duration { return p.interval }

// Stop ends Run after the current tick. Safe to call more than once.
func (p *Poller) Stop() { p.stopOnce.Do(func() { close(p.stopCh) }) }

// Run polls immediately and then on every tick until ctx is done or Stop is called.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-p.stopCh:
			return nil
		case <-t.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	q, err := p.fetch(ctx, p.symbol)
	if ctx.Err() != nil {
		return
	}
	p.write(p.format(q, err))
}

func (p *Poller) format(q Quote, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	ts := q.Time
	if ts.IsZero() {
		ts = p.now()
	}
	stamp := util.FormatLocal(ts, p.loc)
	if !q.OK {
		return stamp + " | no data"
	}
	line := fmt.Sprintf("%s | %.2f", stamp, q.Price)
	if q.Note != "" {
		line += " | " + q.Note
	}
	return line
}

func (p *Poller) write(line string) {
	if p.inPlace {
		// pad so a shorter line fully overwrites the previous one
		fmt.Fprintf(p.out, "\r%-80s", line)
		return
	}
	fmt.Fprintln(p.out, line)
}

// QuoteFromSource reads the last close straight from a live source.
func QuoteFromSource(src drepo.MarketDataSource, normalize func(string) string) QuoteFunc {
	return func(ctx context.Context, symbol string) (Quote, error) {
		s, err := src.FetchSeries(ctx, normalize(symbol))
		if err != nil {
			return Quote{}, err
		}
		last, ok := s.Last()
		if !ok {
			return Quote{}, nil
		}
		return Quote{Time: last.Time, Price: last.Close, OK: true}, nil
	}
}

// QuoteFromPredictions runs a full prediction per tick and reports the current
// price annotated with the predicted move.
func QuoteFromPredictions(svc *PredictionService) QuoteFunc {
	return func(ctx context.Context, symbol string) (Quote, error) {
		r := svc.Predict(ctx, symbol, models.ChartLine)
		if r.DataSource == models.SourceError {
			return Quote{}, errors.New(r.Error)
		}
		note := fmt.Sprintf("%s -> %.2f (%.1f%%) [%s]", r.Direction, r.PredictedPrice, r.Confidence, r.DataSource)
		if r.FinalSignal {
			note += " FINAL"
		}
		return Quote{Price: r.CurrentPrice, Note: note, OK: true}, nil
	}
}
