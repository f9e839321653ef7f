// Package metrics provides Prometheus metrics for the transfer
// prediction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Prediction pipeline
	predictionsTotal   prometheus.Counter
	predictionErrors   *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	predictionScores   prometheus.Histogram

	// Similarity engine
	similarityQueries  prometheus.Counter
	similarityEmpty    prometheus.Counter
	similarityDuration prometheus.Histogram

	// Loaded state
	referenceRecords prometheus.Gauge
	artifactInfo     *prometheus.GaugeVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "transfer",
		subsystem: "predictor",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.predictionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "predictions_total",
		Help: "Total prediction requests served.",
	})
	m.predictionErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "prediction_errors_total",
		Help: "Prediction failures by error kind.",
	}, []string{"kind"})
	m.predictionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "prediction_duration_ms",
		Help:    "End-to-end prediction latency in milliseconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	})
	m.predictionScores = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "prediction_score",
		Help:    "Distribution of calibrated playing-time scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	m.similarityQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "similarity_queries_total",
		Help: "Total similarity searches run.",
	})
	m.similarityEmpty = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "similarity_empty_results_total",
		Help: "Similarity searches with no comparable transfers.",
	})
	m.similarityDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "similarity_query_duration_ms",
		Help:    "Similarity search latency in milliseconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	m.referenceRecords = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "reference_records",
		Help: "Reference transfer records loaded at startup.",
	})
	m.artifactInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "artifact_info",
		Help: "Loaded artifact versions (value is always 1).",
	}, []string{"model", "calibration"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"endpoint", "method", "status"})

	return m
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordPrediction records a served prediction with its latency and
// calibrated score.
func RecordPrediction(durationMs, score float64) {
	globalManager.predictionsTotal.Inc()
	globalManager.predictionDuration.Observe(durationMs)
	globalManager.predictionScores.Observe(score)
}

// RecordPredictionError counts a failed prediction by error kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordSimilarityQuery records a similarity search and its outcome size.
func RecordSimilarityQuery(durationMs float64, results int) {
	globalManager.similarityQueries.Inc()
	globalManager.similarityDuration.Observe(durationMs)
	if results == 0 {
		globalManager.similarityEmpty.Inc()
	}
}

// SetReferenceRecords publishes the loaded snapshot size.
func SetReferenceRecords(n int) {
	globalManager.referenceRecords.Set(float64(n))
}

// SetArtifactInfo publishes the loaded artifact versions.
func SetArtifactInfo(modelVersion, calibrationVersion string) {
	globalManager.artifactInfo.WithLabelValues(modelVersion, calibrationVersion).Set(1)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}
