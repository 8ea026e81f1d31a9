package metrics

import "github.com/prometheus/client_golang/prometheus"

// Classification and embedding Prometheus metrics.
var (
	ClassifyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patternengine",
			Name:      "classify_requests_total",
			Help:      "Total number of classify requests by outcome status",
		},
		[]string{"status"}, // success, no_match, error
	)

	ClassifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "patternengine",
			Name:      "classify_duration_seconds",
			Help:      "Classify request duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"status"},
	)

	ClassifyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patternengine",
			Name:      "classify_errors_total",
			Help:      "Total classify errors by kind",
		},
		[]string{"error_kind"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patternengine",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "patternengine",
			Name:      "embedding_duration_seconds",
			Help:      "Embedding computation duration in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"provider"},
	)

	ReloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "patternengine",
			Name:      "index_reload_total",
			Help:      "Total index reload attempts by outcome",
		},
		[]string{"status"}, // success, failure
	)

	ReloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "patternengine",
			Name:      "index_reload_duration_seconds",
			Help:      "Index reload duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"status"},
	)

	IndexPatternsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "patternengine",
			Name:      "index_patterns_loaded",
			Help:      "Number of patterns in the currently published snapshot",
		},
	)

	InFlightClassifications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "patternengine",
			Name:      "classify_in_flight",
			Help:      "Number of classify requests currently being served",
		},
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers Prometheus classification metrics. Must be called once from main.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClassifyRequestsTotal)
	prometheus.MustRegister(ClassifyDuration)
	prometheus.MustRegister(ClassifyErrorsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(EmbeddingDuration)
	prometheus.MustRegister(ReloadTotal)
	prometheus.MustRegister(ReloadDuration)
	prometheus.MustRegister(IndexPatternsLoaded)
	prometheus.MustRegister(InFlightClassifications)
	embMetricsRegistered = true
}
