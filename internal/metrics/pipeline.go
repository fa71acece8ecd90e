// Package metrics defines the service's Prometheus instruments.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "queries_total",
			Help:      "Total number of pipeline queries by resolved intent and outcome",
		},
		[]string{"intent", "status"}, // status: "ok" / "empty" / "error"
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docrag",
			Name:      "retrieval_duration_seconds",
			Help:      "Wall-clock duration of the retrieval fan-out",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CollectionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "collection_failures_total",
			Help:      "Per-collection search failures absorbed during fan-out",
		},
		[]string{"collection"},
	)

	RerankFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "rerank_fallbacks_total",
			Help:      "Queries that degraded to coarse ordering after a rerank failure",
		},
	)

	AnswerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "answer_cache_total",
			Help:      "Answer cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docrag",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		QueriesTotal,
		RetrievalDuration,
		CollectionFailuresTotal,
		RerankFallbacksTotal,
		AnswerCacheTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
	)
	pipelineMetricsRegistered = true
}
