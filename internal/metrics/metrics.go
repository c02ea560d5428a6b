// Package metrics defines the Prometheus collectors for the pipeline and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	IngestTotal       *prometheus.CounterVec
	IngestDuration    prometheus.Histogram
	ChunksStoredTotal prometheus.Counter
	QueriesTotal      *prometheus.CounterVec
	RetrievalLatency  prometheus.Histogram
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
}

// New creates and registers all pipeline metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		IngestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_documents_total",
				Help: "Total document ingestions by outcome (completed, timeout, failed).",
			},
			[]string{"outcome"},
		),
		IngestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_duration_seconds",
				Help:    "End-to-end document ingestion duration in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		ChunksStoredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chunks_stored_total",
				Help: "Total chunks persisted to the chunk store.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queries_total",
				Help: "Total answered queries by response type (answer, no_documents_found, degraded).",
			},
			[]string{"response_type"},
		),
		RetrievalLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrieval_latency_seconds",
				Help:    "Chunk retrieval latency in seconds, including query embedding.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "answer_cache_hits_total",
				Help: "Total answer cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "answer_cache_misses_total",
				Help: "Total answer cache misses.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IngestTotal,
		m.IngestDuration,
		m.ChunksStoredTotal,
		m.QueriesTotal,
		m.RetrievalLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
