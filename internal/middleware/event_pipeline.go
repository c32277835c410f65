package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AutoTrade/internal/domain/models"
	domrepo "AutoTrade/internal/domain/repository"
	applogger "AutoTrade/pkg/logger"
)

// EventPipeline sits between the prediction service and the broker.
// It validates, throttles per symbol and buffers predictions, and flushes
// them in batches on its own goroutine so that publishing never blocks a request.
type EventPipeline struct {
	pub      domrepo.Publisher
	metrics  domrepo.Metrics
	l        *applogger.Logger
	throttle time.Duration
	batch    int
	flush    time.Duration
	bufCh    chan *models.PredictionResult
	now      func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
	started  bool
	stopCh   chan struct{}
	done     chan struct{}
}

type PipelineOption func(*EventPipeline)

// WithThrottle drops events for a symbol arriving sooner than d after the previous one.
func WithThrottle(d time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if d >= 0 {
			p.throttle = d
		}
	}
}

// WithBufferSize sets the queue length between Process and the flusher.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.PredictionResult, n)
		}
	}
}

// WithBatch sets the max batch size and the flush interval.
func WithBatch(size int, every time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if size > 0 {
			p.batch = size
		}
		if every > 0 {
			p.flush = every
		}
	}
}

func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *EventPipeline) { p.l = l }
}

func NewEventPipeline(pub domrepo.Publisher, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		pub:      pub,
		metrics:  metrics,
		l:        applogger.Nop(),
		throttle: time.Second,
		batch:    50,
		flush:    500 * time.Millisecond,
		bufCh:    make(chan *models.PredictionResult, 256),
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the background flusher. A stopped pipeline can be started again.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopCh, p.done
	p.mu.Unlock()

	go p.run(ctx, stop, done)
}

// Stop flushes what is buffered and waits for the flusher to exit or ctx to expire.
func (p *EventPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	stop, done := p.stopCh, p.done
	p.mu.Unlock()
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Process accepts a prediction for publishing. It never blocks: throttled events
// are dropped silently and a full buffer drops the event with an error.
func (p *EventPipeline) Process(_ context.Context, r *models.PredictionResult) error {
	if err := validateEvent(r); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(r.Symbol, p.now()) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}
	select {
	case p.bufCh <- r:
		return nil
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		return fmt.Errorf("pipeline buffer full")
	}
}

func (p *EventPipeline) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.flush)
	defer ticker.Stop()

	pending := make([]*models.PredictionResult, 0, p.batch)
	backoff := 50 * time.Millisecond
	flush := func(fctx context.Context) {
		if len(pending) == 0 {
			return
		}
		start := time.Now()
		if err := p.pub.PublishBatch(fctx, pending); err != nil {
			p.metrics.RecordError("pipeline_flush")
			p.l.Warn("publish predictions failed",
				applogger.Int("count", len(pending)),
				applogger.Error(err),
			)
			// keep pending for the next tick, capped to one buffer worth
			if len(pending) > cap(p.bufCh) {
				p.metrics.RecordError("pipeline_buffer_drop")
				pending = pending[len(pending)-cap(p.bufCh):]
			}
			if backoff < 2*time.Second {
				backoff *= 2
			}
			select {
			case <-time.After(backoff):
			case <-fctx.Done():
			}
			return
		}
		backoff = 50 * time.Millisecond
		p.metrics.RecordLatency("pipeline_flush", time.Since(start).Seconds())
		pending = make([]*models.PredictionResult, 0, p.batch)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
		drain:
			for {
				select {
				case r := <-p.bufCh:
					pending = append(pending, r)
				default:
					break drain
				}
			}
			flush(ctx)
			return
		case r := <-p.bufCh:
			pending = append(pending, r)
			if len(pending) >= p.batch {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

func validateEvent(r *models.PredictionResult) error {
	if r == nil {
		return fmt.Errorf("prediction nil")
	}
	if r.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if r.DataSource == models.SourceError {
		return fmt.Errorf("error results are not published")
	}
	if r.CurrentPrice <= 0 || r.PredictedPrice < 0 {
		return fmt.Errorf("invalid prices")
	}
	return nil
}

func (p *EventPipeline) allow(symbol string, now time.Time) bool {
	if p.throttle <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[symbol]
	if ok && now.Sub(last) < p.throttle {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}

// NopSink discards events. Used when publishing is disabled.
type NopSink struct{}

func (NopSink) Process(context.Context, *models.PredictionResult) error { return nil }

var (
	_ domrepo.EventSink = (*EventPipeline)(nil)
	_ domrepo.EventSink = NopSink{}
)
