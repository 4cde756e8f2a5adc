// Package metrics provides Prometheus metrics for the goal service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// goalOperationsTotal counts service operations.
	// Labels:
	//   - op: create, update, delete, add_item, toggle_item, remove_item, apply_suggestions
	//   - result: ok, invalid, not_found, error
	goalOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metas_goal_operations_total",
			Help: "Total number of goal operations by outcome",
		},
		[]string{"op", "result"},
	)

	// storageReadFailuresTotal counts collection reads that were recovered as empty.
	storageReadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metas_storage_read_failures_total",
			Help: "Total number of unreadable or corrupt goal collections treated as empty",
		},
	)

	suggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metas_suggestions_total",
			Help: "Total number of AI step suggestion requests by outcome",
		},
		[]string{"result"},
	)

	// Buckets: 0.25s .. 60s; model latency is dominated by generation time.
	suggestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metas_suggestion_duration_seconds",
			Help:    "Duration of AI step suggestion requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(goalOperationsTotal)
	prometheus.MustRegister(storageReadFailuresTotal)
	prometheus.MustRegister(suggestionsTotal)
	prometheus.MustRegister(suggestionDuration)
}

// RecordGoalOperation counts one goal operation with its outcome.
func RecordGoalOperation(op, result string) {
	goalOperationsTotal.WithLabelValues(op, result).Inc()
}

// RecordStorageReadFailure counts a recovered collection read failure.
func RecordStorageReadFailure() {
	storageReadFailuresTotal.Inc()
}

// RecordSuggestion counts a suggestion request and observes its duration.
func RecordSuggestion(result string, seconds float64) {
	suggestionsTotal.WithLabelValues(result).Inc()
	suggestionDuration.Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
