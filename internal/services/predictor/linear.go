// Package predictor holds SequencePredictor implementations.
package predictor

import (
	"context"
	"fmt"
	"math"

	"AutoTrade/internal/domain/models"
	domsvc "AutoTrade/internal/domain/service"
)

const (
	DefaultEpochs       = 5
	DefaultLearningRate = 0.05
)

// Linear is an in-process autoregressive model trained with normalized LMS.
// Training starts from a persistence model (weight 1 on the latest sample),
// so a few epochs only ever refine the naive forecast.
type Linear struct {
	epochs int
	lr     float64
}

type LinearOption func(*Linear)

func WithEpochs(n int) LinearOption {
	return func(l *Linear) {
		if n > 0 {
			l.epochs = n
		}
	}
}

// WithLearningRate sets the NLMS step size. Values outside (0,2) are ignored.
func WithLearningRate(lr float64) LinearOption {
	return func(l *Linear) {
		if lr > 0 && lr < 2 {
			l.lr = lr
		}
	}
}

func NewLinear(opts ...LinearOption) *Linear {
	l := &Linear{epochs: DefaultEpochs, lr: DefaultLearningRate}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Ready(context.Context) error { return nil }

// Fit trains a fresh model on ds. The context is checked between epochs.
func (l *Linear) Fit(ctx context.Context, ds models.Dataset) (domsvc.TrainedModel, error) {
	if ds.Len() == 0 || ds.Lookback <= 0 {
		return nil, fmt.Errorf("empty dataset: %w", models.ErrComputationFailure)
	}
	if len(ds.Windows) != ds.Len() {
		return nil, fmt.Errorf("dataset has %d windows and %d targets: %w", len(ds.Windows), ds.Len(), models.ErrComputationFailure)
	}

	m := &linearModel{w: make([]float64, ds.Lookback)}
	m.w[ds.Lookback-1] = 1

	for epoch := 0; epoch < l.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fit interrupted at epoch %d: %w", epoch, err)
		}
		for i, x := range ds.Windows {
			if len(x) != ds.Lookback {
				return nil, fmt.Errorf("window %d has length %d, want %d: %w", i, len(x), ds.Lookback, models.ErrComputationFailure)
			}
			e := m.eval(x) - ds.Targets[i]
			step := l.lr * e / (1 + dot(x, x))
			for j := range m.w {
				m.w[j] -= step * x[j]
			}
			m.b -= step
		}
	}

	if !finite(m.b) {
		return nil, fmt.Errorf("training diverged: %w", models.ErrComputationFailure)
	}
	for _, w := range m.w {
		if !finite(w) {
			return nil, fmt.Errorf("training diverged: %w", models.ErrComputationFailure)
		}
	}
	return m, nil
}

type linearModel struct {
	w []float64
	b float64
}

func (m *linearModel) PredictNext(_ context.Context, window []float64) (float64, error) {
	if len(window) != len(m.w) {
		return 0, fmt.Errorf("window has length %d, want %d: %w", len(window), len(m.w), models.ErrComputationFailure)
	}
	return m.eval(window), nil
}

func (m *linearModel) eval(x []float64) float64 {
	return m.b + dot(m.w, x)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

var _ domsvc.SequencePredictor = (*Linear)(nil)
