package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoints holds per-endpoint collectors of the prediction API.
type Endpoints struct {
	Latency       *prometheus.HistogramVec
	Errors        *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec
	StreamClients prometheus.Gauge
}

// NewEndpoints registers the endpoint collectors against reg.
func NewEndpoints(reg prometheus.Registerer) *Endpoints {
	f := promauto.With(reg)
	return &Endpoints{
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "autotrade",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of prediction endpoints",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "autotrade",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Request or prediction errors by endpoint",
			},
			[]string{"endpoint"},
		),
		RateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "autotrade",
				Subsystem: "api",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),
		StreamClients: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "autotrade",
				Subsystem: "api",
				Name:      "stream_clients",
				Help:      "Open prediction stream connections",
			},
		),
	}
}
