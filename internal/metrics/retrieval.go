package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SpaceSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casematch",
			Name:      "space_search_duration_seconds",
			Help:      "Per-space KNN search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"space", "status"}, // status: "ok" / "error"
	)

	SpaceDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casematch",
			Name:      "space_degraded_total",
			Help:      "Searches where a space failed and was treated as empty",
		},
		[]string{"space"},
	)

	FusedCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "casematch",
			Name:      "fused_candidates",
			Help:      "Number of candidates returned after fusion",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SpaceSearchDuration)
	prometheus.MustRegister(SpaceDegradedTotal)
	prometheus.MustRegister(FusedCandidates)
	retrievalMetricsRegistered = true
}
