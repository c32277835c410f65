package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "AutoTrade/internal/domain/repository"
	applogger "AutoTrade/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Warmer periodically refreshes cached series for a fixed symbol list so that
// requests for popular symbols are served from the cache tier.
type Warmer struct {
	cron    *cron.Cron
	acq     *DataAcquirer
	symbols []string
	metrics drepo.Metrics
	l       *applogger.Logger
	timeout time.Duration
}

// NewWarmer registers the refresh job. schedule uses the six-field (seconds) cron syntax.
func NewWarmer(acq *DataAcquirer, schedule string, symbols []string, metrics drepo.Metrics, l *applogger.Logger) (*Warmer, error) {
	if l == nil {
		l = applogger.Nop()
	}
	w := &Warmer{
		cron:    cron.New(cron.WithSeconds()),
		acq:     acq,
		symbols: symbols,
		metrics: metrics,
		l:       l,
		timeout: 2 * time.Minute,
	}
	if _, err := w.cron.AddFunc(schedule, func() { w.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register warmup job: %w", err)
	}
	return w, nil
}

func (w *Warmer) Start() {
	w.cron.Start()
	w.l.Info("cache warmer started", applogger.Strings("symbols", w.symbols))
}

// Stop waits for a running job to finish or ctx to expire.
func (w *Warmer) Stop(ctx context.Context) {
	done := w.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
	w.l.Info("cache warmer stopped")
}

// RunOnce refreshes every symbol and returns how many succeeded.
func (w *Warmer) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ok := 0
	for _, sym := range w.symbols {
		if ctx.Err() != nil {
			break
		}
		if err := w.acq.Warm(ctx, sym); err != nil {
			w.metrics.RecordError("warmup")
			w.l.Warn("warmup failed", applogger.String("symbol", sym), applogger.Error(err))
			continue
		}
		ok++
	}
	w.l.Debug("warmup finished", applogger.Int("ok", ok), applogger.Int("total", len(w.symbols)))
	return ok
}
