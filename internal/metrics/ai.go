package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI and quota Prometheus metrics.
var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "ai_requests_total",
			Help:      "Total number of AI completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lectio",
			Name:      "ai_request_duration_seconds",
			Help:      "AI completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"provider", "model"},
	)

	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "ai_tokens_total",
			Help:      "Total AI tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	AIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "ai_errors_total",
			Help:      "Total AI completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	QuotaChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "quota_checks_total",
			Help:      "Daily AI quota checks by outcome",
		},
		[]string{"result"}, // "allowed" / "denied" / "fail_open"
	)

	QuotaRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "quota_records_total",
			Help:      "Daily AI usage records by outcome",
		},
		[]string{"result"}, // "ok" / "error"
	)

	ExplanationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lectio",
			Name:      "explanation_cache_total",
			Help:      "Explanation cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var aiMetricsRegistered bool

// RegisterAIMetrics registers Prometheus AI and quota metrics. Must be called once from main.
func RegisterAIMetrics() {
	if aiMetricsRegistered {
		return
	}
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITokensTotal)
	prometheus.MustRegister(AIErrorsTotal)
	prometheus.MustRegister(QuotaChecksTotal)
	prometheus.MustRegister(QuotaRecordsTotal)
	prometheus.MustRegister(ExplanationCacheTotal)
	aiMetricsRegistered = true
}
