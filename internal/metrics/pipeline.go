package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vecluster"

// Clustering pipeline metrics.
var (
	ClusteringRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clustering_runs_total",
			Help:      "Total clustering runs",
		},
		[]string{"status"},
	)

	ClusteringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_duration_seconds",
			Help:      "End-to-end clustering duration including summaries",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	KMeansIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kmeans_iterations",
			Help:      "Lloyd iterations per k-means run",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50, 100},
		},
		[]string{"converged"},
	)

	ClusteringDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_documents",
			Help:      "Documents per clustering request",
			Buckets:   []float64{1, 3, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

// Summarization metrics.
var (
	SummaryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Total remote summarization requests",
		},
		[]string{"provider", "model", "status"},
	)

	SummaryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_request_duration_seconds",
			Help:      "Remote summarization request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider", "model"},
	)

	SummaryTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	SummaryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_errors_total",
			Help:      "Failed remote summarization requests by reason",
		},
		[]string{"provider", "model", "reason"},
	)

	SummaryFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_fallbacks_total",
			Help:      "Summaries produced by the rule-based tier, by reason",
		},
		[]string{"reason"},
	)

	SummaryBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_budget_tokens_remaining",
			Help:      "Remaining completion token budget",
		},
		[]string{"provider", "period"},
	)
)

var registerOnce sync.Once

// RegisterPipelineMetrics registers clustering and summarization metrics
// on the default registry. Safe to call more than once.
func RegisterPipelineMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ClusteringRunsTotal,
			ClusteringDuration,
			KMeansIterations,
			ClusteringDocuments,
			SummaryRequestsTotal,
			SummaryRequestDuration,
			SummaryTokensTotal,
			SummaryErrorsTotal,
			SummaryFallbacksTotal,
			SummaryBudgetTokensRemaining,
		)
	})
}
