package predictor

import (
	"context"
	"fmt"
	"time"

	"AutoTrade/internal/domain/models"
	domsvc "AutoTrade/internal/domain/service"
	"AutoTrade/internal/services/analytics"
)

// HTTP delegates training and inference to a remote model service.
//
//	POST /fit     {lookback, windows, targets} -> {model_id}
//	POST /predict {model_id, window}           -> {value}
//	GET  /health
type HTTP struct {
	base *analytics.HTTPServiceBase
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{base: analytics.NewHTTPServiceBase(baseURL, timeout)}
}

type fitRequest struct {
	Lookback int         `json:"lookback"`
	Windows  [][]float64 `json:"windows"`
	Targets  []float64   `json:"targets"`
}

type fitResponse struct {
	ModelID string `json:"model_id"`
}

type predictRequest struct {
	ModelID string    `json:"model_id"`
	Window  []float64 `json:"window"`
}

type predictResponse struct {
	Value *float64 `json:"value"`
}

func (p *HTTP) Name() string { return "http" }

func (p *HTTP) Ready(ctx context.Context) error {
	if err := p.base.GetJSON(ctx, "/health", nil); err != nil {
		return fmt.Errorf("model service: %w", err)
	}
	return nil
}

func (p *HTTP) Fit(ctx context.Context, ds models.Dataset) (domsvc.TrainedModel, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("empty dataset: %w", models.ErrComputationFailure)
	}
	var fr fitResponse
	req := fitRequest{Lookback: ds.Lookback, Windows: ds.Windows, Targets: ds.Targets}
	if err := p.base.PostJSON(ctx, "/fit", req, &fr); err != nil {
		return nil, fmt.Errorf("fit: %v: %w", err, models.ErrComputationFailure)
	}
	if fr.ModelID == "" {
		return nil, fmt.Errorf("fit: empty model id: %w", models.ErrComputationFailure)
	}
	return &remoteModel{base: p.base, id: fr.ModelID, lookback: ds.Lookback}, nil
}

type remoteModel struct {
	base     *analytics.HTTPServiceBase
	id       string
	lookback int
}

func (m *remoteModel) PredictNext(ctx context.Context, window []float64) (float64, error) {
	if len(window) != m.lookback {
		return 0, fmt.Errorf("window has length %d, want %d: %w", len(window), m.lookback, models.ErrComputationFailure)
	}
	var pr predictResponse
	if err := m.base.PostJSONWithRetry(ctx, "/predict", predictRequest{ModelID: m.id, Window: window}, &pr, 2); err != nil {
		return 0, fmt.Errorf("predict: %v: %w", err, models.ErrComputationFailure)
	}
	if pr.Value == nil {
		return 0, fmt.Errorf("predict: missing value: %w", models.ErrComputationFailure)
	}
	return *pr.Value, nil
}

var _ domsvc.SequencePredictor = (*HTTP)(nil)
