// Package metrics exports session controller outcomes to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/session"
)

// Recorder implements session.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	uploads      *prometheus.CounterVec
	uploadBytes  prometheus.Counter
	queries      *prometheus.CounterVec
	queryLatency prometheus.Histogram
	exports      *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfqa_uploads_total",
				Help: "Upload attempts by outcome",
			},
			[]string{"outcome"},
		),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfqa_upload_bytes_total",
			Help: "Bytes of PDF accepted by the backend",
		}),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfqa_queries_total",
				Help: "Query attempts by outcome",
			},
			[]string{"outcome"},
		),
		queryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdfqa_backend_query_latency_seconds",
			Help:    "Answer latency reported by the backend",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfqa_exports_total",
				Help: "Clipboard exports by outcome",
			},
			[]string{"outcome"},
		),
	}
	r.registry.MustRegister(r.uploads, r.uploadBytes, r.queries, r.queryLatency, r.exports)
	return r
}

// ObserveUpload counts an upload attempt.
func (r *Recorder) ObserveUpload(outcome session.Outcome, bytes int64) {
	r.uploads.WithLabelValues(string(outcome)).Inc()
	if outcome == session.OutcomeSuccess && bytes > 0 {
		r.uploadBytes.Add(float64(bytes))
	}
}

// ObserveQuery counts a query attempt and records the backend latency when
// it was reported.
func (r *Recorder) ObserveQuery(outcome session.Outcome, latency backend.Measurement) {
	r.queries.WithLabelValues(string(outcome)).Inc()
	if outcome == session.OutcomeSuccess && latency.Available {
		r.queryLatency.Observe(latency.Value)
	}
}

// ObserveExport counts a clipboard export.
func (r *Recorder) ObserveExport(outcome session.Outcome) {
	r.exports.WithLabelValues(string(outcome)).Inc()
}

// Gatherer exposes the registry, mostly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
