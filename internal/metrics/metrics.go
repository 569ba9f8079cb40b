package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Agent, knowledge base and embedding cache metrics.
var (
	AgentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "project_matcher",
			Name:      "agent_requests_total",
			Help:      "Total number of LLM agent requests",
		},
		[]string{"agent", "status"},
	)

	AgentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "project_matcher",
			Name:      "agent_request_duration_seconds",
			Help:      "LLM agent request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"agent"},
	)

	KnowledgeBaseSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "project_matcher",
			Name:      "knowledge_base_searches_total",
			Help:      "Total number of knowledge base searches",
		},
		[]string{"rerank", "status"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "project_matcher",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// Register registers all service metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AgentRequestsTotal,
			AgentRequestDuration,
			KnowledgeBaseSearchesTotal,
			EmbeddingCacheTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
