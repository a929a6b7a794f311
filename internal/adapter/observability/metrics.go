package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	JobsImportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_imported_total",
			Help: "Total number of job records imported by outcome",
		},
		[]string{"source", "outcome"},
	)
	JobsScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_scored_total",
			Help: "Total number of jobs scored by tier",
		},
		[]string{"tier"},
	)
	JobsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_failed_total",
			Help: "Total number of jobs that failed scoring",
		},
		[]string{"kind"},
	)
	PipelineCostUSD = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_cost_usd_total",
			Help: "Accumulated provider spend in USD",
		},
	)

	// Score outcome distribution
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "job_match_score",
			Help:    "Distribution of match_score (normalized fraction [0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(JobsImportedTotal)
	prometheus.MustRegister(JobsScoredTotal)
	prometheus.MustRegister(JobsFailedTotal)
	prometheus.MustRegister(PipelineCostUSD)
	prometheus.MustRegister(MatchScoreHistogram)
}
