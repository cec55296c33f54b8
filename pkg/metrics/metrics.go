// Package metrics defines the Prometheus metric collectors used across the
// chatbot platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ChatRequestsTotal    *prometheus.CounterVec
	RetrievalMatches     prometheus.Histogram
	RetrievalLatency     prometheus.Histogram
	CompletionsTotal     *prometheus.CounterVec
	CompletionLatency    prometheus.Histogram
	GuardRejectionsTotal *prometheus.CounterVec
	KnowledgeRecords     prometheus.Gauge
	RecordsImportedTotal prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ChatRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Total chat requests by outcome (answered, no_knowledge, completion_error, rate_limited).",
			},
			[]string{"outcome"},
		),
		RetrievalMatches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chat_retrieval_matches",
				Help:    "Number of knowledge matches retrieved per chat request.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		RetrievalLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chat_retrieval_latency_seconds",
				Help:    "Knowledge retrieval latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		CompletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_requests_total",
				Help: "Total completion-service calls by status (ok, malformed, error).",
			},
			[]string{"status"},
		),
		CompletionLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "completion_latency_seconds",
				Help:    "Completion-service call latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
		),
		GuardRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_rejections_total",
				Help: "Requests rejected by the rate/repeat guard, by limit kind.",
			},
			[]string{"kind"},
		),
		KnowledgeRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "knowledge_records",
				Help: "Number of retrievable knowledge records.",
			},
		),
		RecordsImportedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "knowledge_records_imported_total",
				Help: "Total knowledge records written by the importer.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ChatRequestsTotal,
		m.RetrievalMatches,
		m.RetrievalLatency,
		m.CompletionsTotal,
		m.CompletionLatency,
		m.GuardRejectionsTotal,
		m.KnowledgeRecords,
		m.RecordsImportedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
