// Package observability exposes Prometheus metrics for the conversion
// pipeline. Registration happens at init time; callers use the helper
// functions instead of touching collectors directly.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeq_conversions_total",
			Help: "Total number of completed conversion sessions by terminal status.",
		},
		[]string{"status"},
	)

	conversionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seeq_conversion_attempts",
			Help:    "Attempts consumed per conversion session.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	llmRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seeq_llm_request_duration_seconds",
			Help:    "Text-generation service call latency by operation.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"op"},
	)

	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seeq_query_duration_seconds",
			Help:    "Generated SQL execution latency against the target database.",
			Buckets: prometheus.DefBuckets,
		},
	)

	contextBuildDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seeq_context_build_duration_seconds",
			Help:    "Schema context construction latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		conversionsTotal,
		conversionAttempts,
		llmRequestDurationSeconds,
		queryDurationSeconds,
		contextBuildDurationSeconds,
	)
}

// ObserveConversion records one finished session.
func ObserveConversion(status string, attempts int) {
	conversionsTotal.WithLabelValues(status).Inc()
	conversionAttempts.Observe(float64(attempts))
}

// ObserveLLMRequest records one generation-service call. op is "generate"
// or "verify".
func ObserveLLMRequest(op string, elapsed time.Duration) {
	llmRequestDurationSeconds.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveQuery records one generated-SQL execution.
func ObserveQuery(elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveContextBuild records one schema context construction.
func ObserveContextBuild(elapsed time.Duration) {
	contextBuildDurationSeconds.Observe(elapsed.Seconds())
}
