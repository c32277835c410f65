package api

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	models "AutoTrade/internal/domain/models"
	"AutoTrade/internal/service/metrics"
	"AutoTrade/internal/service/ratelimit"
	xhttp "AutoTrade/pkg/http"
	applogger "AutoTrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

const maxBatchBody = 64 << 10

// PredictionService is what the handlers need from the prediction pipeline.
type PredictionService interface {
	Predict(ctx context.Context, symbol string, shape models.ChartShape) *models.PredictionResult
	PredictBatch(ctx context.Context, symbols []string, shape models.ChartShape) *models.PortfolioResult
	Health(ctx context.Context) *models.HealthStatus
}

// PredictEchoHandler serves the prediction API.
type PredictEchoHandler struct {
	svc     PredictionService
	l       *applogger.Logger
	rl      *ratelimit.Limiter // nil disables rate limiting
	metrics *metrics.Endpoints
}

func NewPredictEchoHandler(svc PredictionService, l *applogger.Logger, rl *ratelimit.Limiter, m *metrics.Endpoints) *PredictEchoHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &PredictEchoHandler{svc: svc, l: l, rl: rl, metrics: m}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict/:symbol", h.Predict)
	g.POST("/portfolio/batch", h.Batch)
	g.GET("/health", h.Health)
	g.GET("/stream/:symbol", h.Stream)
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	const endpoint = "predict"
	defer h.observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.fail(endpoint)
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.svc.Predict(c.Request().Context(), req.Symbol, models.NormalizeChartShape(req.Chart))
	if res.DataSource == models.SourceError {
		h.fail(endpoint)
	}
	return xhttp.JSONResponse(c, res)
}

// Batch accepts either a bare JSON array of symbols or {"symbols": [...], "chart": "..."}.
func (h *PredictEchoHandler) Batch(c echo.Context) error {
	const endpoint = "batch"
	defer h.observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req, err := readBatch(c)
	if err != nil {
		h.fail(endpoint)
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid request body").WithError(err))
	}
	if verr := xhttp.ValidateRequest(c.Request().Context(), req); verr != nil {
		h.fail(endpoint)
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.svc.PredictBatch(c.Request().Context(), req.Symbols, models.NormalizeChartShape(req.Chart))
	if res.TotalStocks < len(req.Symbols) {
		h.l.Info("batch partially served",
			applogger.Int("requested", len(req.Symbols)),
			applogger.Int("served", res.TotalStocks),
		)
	}
	return xhttp.JSONResponse(c, res)
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	defer h.observe("health", time.Now())
	return xhttp.JSONResponse(c, h.svc.Health(c.Request().Context()))
}

func readBatch(c echo.Context) (*models.BatchRequest, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBatchBody))
	if err != nil {
		return nil, err
	}
	req := &models.BatchRequest{}
	if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
		err = json.Unmarshal(body, &req.Symbols)
	} else {
		err = json.Unmarshal(body, req)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (h *PredictEchoHandler) allow(c echo.Context, endpoint string) bool {
	if h.rl == nil || h.rl.Allow(c.RealIP()) {
		return true
	}
	if h.metrics != nil {
		h.metrics.RateLimited.WithLabelValues(endpoint).Inc()
	}
	h.l.Warn("rate limited", applogger.String("endpoint", endpoint), applogger.String("remote", c.RealIP()))
	return false
}

func (h *PredictEchoHandler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.Latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (h *PredictEchoHandler) fail(endpoint string) {
	if h.metrics != nil {
		h.metrics.Errors.WithLabelValues(endpoint).Inc()
	}
}

var _ xhttp.Handler = (*PredictEchoHandler)(nil)
