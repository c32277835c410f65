package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "AutoTrade/internal/domain/models"
	"AutoTrade/internal/service/metrics"
	"AutoTrade/internal/service/ratelimit"
)

type fakeService struct {
	mu      sync.Mutex
	symbols []string
	shapes  []models.ChartShape
}

func (f *fakeService) Predict(_ context.Context, symbol string, shape models.ChartShape) *models.PredictionResult {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbol)
	f.shapes = append(f.shapes, shape)
	f.mu.Unlock()
	if symbol == "BAD" {
		return &models.PredictionResult{Symbol: symbol, DataSource: models.SourceError, Error: "boom"}
	}
	return &models.PredictionResult{
		Symbol:        symbol,
		CurrentPrice:  100,
		Direction:     models.DirectionBuy,
		DataSource:    models.SourceLive,
		ChartData:     []models.OHLCPoint{},
		SignalHistory: []models.Direction{models.DirectionBuy},
	}
}

func (f *fakeService) PredictBatch(ctx context.Context, symbols []string, shape models.ChartShape) *models.PortfolioResult {
	out := []*models.PredictionResult{}
	for _, s := range symbols {
		if r := f.Predict(ctx, s, shape); r.DataSource != models.SourceError {
			out = append(out, r)
		}
	}
	return &models.PortfolioResult{Portfolio: out, TotalStocks: len(out), Timestamp: "2024-05-06 10:00:00"}
}

func (f *fakeService) Health(context.Context) *models.HealthStatus {
	return &models.HealthStatus{Status: "healthy", CacheSize: 2, DataSource: "yahoo", Predictor: "linear"}
}

func newTestEcho(t *testing.T, rl *ratelimit.Limiter) (*echo.Echo, *fakeService, *metrics.Endpoints) {
	t.Helper()
	svc := &fakeService{}
	m := metrics.NewEndpoints(prometheus.NewRegistry())
	e := echo.New()
	NewPredictEchoHandler(svc, nil, rl, m).RegisterRoutes(e)
	return e, svc, m
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPredictEndpoint(t *testing.T) {
	e, svc, _ := newTestEcho(t, nil)

	rec := do(e, http.MethodGet, "/api/predict/AAPL?chart=line", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got["symbol"])
	assert.Equal(t, "LIVE", got["data_source"])
	assert.Contains(t, got, "chart_data")
	assert.Contains(t, got, "signal_history")
	assert.NotContains(t, got, "error")
	assert.Equal(t, []models.ChartShape{models.ChartLine}, svc.shapes)
}

func TestPredictDefaultsChartToOHLC(t *testing.T) {
	e, svc, _ := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/predict/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.ChartShape{models.ChartOHLC}, svc.shapes)
}

func TestPredictValidation(t *testing.T) {
	e, _, m := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/predict/AAPL?chart=pie", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "chart")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("predict")))
}

func TestPredictErrorResultIsStill200(t *testing.T) {
	e, _, m := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/predict/BAD", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data_source":"ERROR"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("predict")))
}

func TestBatchEndpoint(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `["AAPL","BAD","MSFT"]`},
		{"object", `{"symbols":["AAPL","BAD","MSFT"],"chart":"line"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEcho(t, nil)
			rec := do(e, http.MethodPost, "/api/portfolio/batch", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got models.PortfolioResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, 2, got.TotalStocks)
			require.Len(t, got.Portfolio, 2)
			assert.Equal(t, "MSFT", got.Portfolio[1].Symbol)
		})
	}
}

func TestBatchRejectsBadBodies(t *testing.T) {
	e, _, _ := newTestEcho(t, nil)

	rec := do(e, http.MethodPost, "/api/portfolio/batch", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/portfolio/batch", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BAD_REQUEST")
}

func TestHealthEndpoint(t *testing.T) {
	e, _, _ := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"cache_size":2`)
}

func TestRateLimited(t *testing.T) {
	e, _, m := newTestEcho(t, ratelimit.New(1, 0.001))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/predict/AAPL", "").Code)
	rec := do(e, http.MethodGet, "/api/predict/AAPL", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("predict")))
}

func TestStreamPushesPredictions(t *testing.T) {
	e, _, m := newTestEcho(t, nil)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream/AAPL?interval=0.5"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for i := 0; i < 2; i++ {
		var r models.PredictionResult
		require.NoError(t, conn.ReadJSON(&r))
		assert.Equal(t, "AAPL", r.Symbol)
	}
	assert.Eventually(t, func() bool { return testutil.ToFloat64(m.StreamClients) == 1 }, time.Second, 10*time.Millisecond)
}

func TestStreamValidation(t *testing.T) {
	e, _, _ := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/stream/AAPL?interval=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
