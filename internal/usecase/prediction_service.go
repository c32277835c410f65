package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"AutoTrade/internal/domain/models"
	drepo "AutoTrade/internal/domain/repository"
	domsvc "AutoTrade/internal/domain/service"
	"AutoTrade/internal/services/features"
	"AutoTrade/internal/services/signal"
	applogger "AutoTrade/pkg/logger"
)

// PredictionService owns everything one prediction touches: the acquirer and its
// cache, the predictor, the per-symbol confirmation history and the event sink.
type PredictionService struct {
	acq        *DataAcquirer
	predictor  domsvc.SequencePredictor
	confirm    *signal.ConfirmationBuffer
	asm        *Assembler
	sink       drepo.EventSink
	metrics    drepo.Metrics
	l          *applogger.Logger
	lookback   int
	fitTimeout time.Duration
}

func NewPredictionService(
	acq *DataAcquirer,
	predictor domsvc.SequencePredictor,
	confirm *signal.ConfirmationBuffer,
	asm *Assembler,
	sink drepo.EventSink,
	metrics drepo.Metrics,
	l *applogger.Logger,
	lookback int,
	fitTimeout time.Duration,
) *PredictionService {
	if l == nil {
		l = applogger.Nop()
	}
	if lookback <= 0 {
		lookback = features.DefaultLookback
	}
	return &PredictionService{
		acq:        acq,
		predictor:  predictor,
		confirm:    confirm,
		asm:        asm,
		sink:       sink,
		metrics:    metrics,
		l:          l,
		lookback:   lookback,
		fitTimeout: fitTimeout,
	}
}

// Predict always returns a result; failures come back with data_source ERROR.
// MOCK predictions neither read nor update the confirmation history, so they never confirm a signal.
func (s *PredictionService) Predict(ctx context.Context, raw string, shape models.ChartShape) (res *models.PredictionResult) {
	start := time.Now()
	symbol := s.acq.Normalize(raw)
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordError("predict_panic")
			s.l.Error("prediction panicked",
				applogger.String("symbol", symbol),
				applogger.Any("panic", r),
				applogger.String("stack", string(debug.Stack())),
			)
			res = s.asm.Failure(symbol, fmt.Errorf("internal error: %v", r))
		}
		s.metrics.RecordLatency("predict", time.Since(start).Seconds())
	}()

	res, err := s.predict(ctx, symbol, shape)
	if err != nil {
		s.metrics.RecordError("predict")
		s.l.Error("prediction failed", applogger.String("symbol", symbol), applogger.Error(err))
		return s.asm.Failure(symbol, err)
	}

	s.metrics.RecordPrediction(res.Symbol, res.DataSource, res.Direction)
	s.metrics.RecordLastPrice(res.Symbol, res.CurrentPrice)
	if res.FinalSignal {
		s.metrics.RecordFinalSignal(res.Symbol, res.Direction)
	}
	if s.sink != nil {
		if err := s.sink.Process(ctx, res); err != nil {
			s.l.Warn("prediction event dropped", applogger.String("symbol", res.Symbol), applogger.Error(err))
		}
	}
	return res
}

func (s *PredictionService) predict(ctx context.Context, symbol string, shape models.ChartShape) (*models.PredictionResult, error) {
	acq := s.acq.Acquire(ctx, symbol)
	frame := features.ComputeIndicators(acq.Series)

	w, err := features.BuildWindows(frame.Closes(), s.lookback)
	if err != nil {
		return nil, fmt.Errorf("build windows: %w", err)
	}

	fctx := ctx
	if s.fitTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.fitTimeout)
		defer cancel()
	}
	model, err := s.predictor.Fit(fctx, w.Dataset)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", s.predictor.Name(), wrapComputation(err))
	}
	next, err := model.PredictNext(fctx, w.Inference)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", s.predictor.Name(), wrapComputation(err))
	}

	last, _ := acq.Series.Last()
	predicted := w.Scaler.Inverse(next)
	sc, err := signal.Evaluate(predicted, last.Close)
	if err != nil {
		return nil, err
	}

	out := Outcome{Acquisition: acq, Frame: frame, Predicted: predicted, Score: sc}
	if acq.Source == models.SourceMock {
		// synthetic prices never feed the confirmation history
		out.History = s.confirm.History(acq.Symbol)
	} else {
		out.FinalSignal, out.History = s.confirm.Observe(acq.Symbol, sc)
	}
	return s.asm.Success(out, shape), nil
}

// PredictBatch predicts each symbol in order and drops ERROR results.
func (s *PredictionService) PredictBatch(ctx context.Context, symbols []string, shape models.ChartShape) *models.PortfolioResult {
	out := make([]*models.PredictionResult, 0, len(symbols))
	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}
		r := s.Predict(ctx, sym, shape)
		if r.DataSource == models.SourceError {
			s.l.Warn("batch symbol skipped", applogger.String("symbol", r.Symbol), applogger.String("error", r.Error))
			continue
		}
		out = append(out, r)
	}
	return &models.PortfolioResult{
		Portfolio:   out,
		TotalStocks: len(out),
		Timestamp:   s.asm.Timestamp(time.Now()),
	}
}

// Health reports process liveness plus source and predictor readiness.
// The process is healthy as long as it can answer; MOCK keeps predictions flowing.
func (s *PredictionService) Health(ctx context.Context) *models.HealthStatus {
	hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return &models.HealthStatus{
		Status:          "healthy",
		Timestamp:       s.asm.Timestamp(time.Now()),
		CacheSize:       s.acq.CacheSize(hctx),
		DataSource:      s.acq.SourceName(),
		DataSourceReady: s.acq.SourceHealth(hctx) == nil,
		Predictor:       s.predictor.Name(),
		PredictorReady:  s.predictor.Ready(hctx) == nil,
	}
}

// Acquirer exposes the data ladder for the warmer and the poller.
func (s *PredictionService) Acquirer() *DataAcquirer { return s.acq }

func wrapComputation(err error) error {
	if errors.Is(err, models.ErrComputationFailure) {
		return err
	}
	return fmt.Errorf("%v: %w", err, models.ErrComputationFailure)
}
