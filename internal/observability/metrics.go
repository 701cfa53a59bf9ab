// Package observability wires Prometheus metrics for the forecast API.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the forecast service.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: endpoint, outcome={ok,bad_request,not_found,error}
	RequestDuration *prometheus.HistogramVec // labels: endpoint
	DatasetLoads    prometheus.Histogram
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss}
	DatasetReady    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gefs_api",
			Name:      "requests_total",
			Help:      "Forecast API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gefs_api",
			Name:      "request_duration_seconds",
			Help:      "Time to compute a forecast view.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		DatasetLoads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gefs_api",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time to load and prepare the regional forecast dataset.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gefs_api",
			Name:      "dataset_cache_lookups_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gefs_api",
			Name:      "dataset_ready",
			Help:      "1 when a forecast dataset is loaded and cached.",
		}),
	}

	prometheus.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.DatasetLoads,
		m.CacheLookups,
		m.DatasetReady,
	)
	return m
}
