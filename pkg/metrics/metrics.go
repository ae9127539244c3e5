package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheOperations counts response-cache lookups by result (hit|miss|expired|error).
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_cache_operations_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"},
	)

	// UpstreamRequests counts provider API fetches by action and result (success|failure).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_upstream_requests_total",
			Help: "Total number of upstream provider requests",
		},
		[]string{"action", "result"},
	)

	// ItemsStored tracks the number of catalog items written per batch type (vod|series).
	ItemsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_items_stored_total",
			Help: "Total number of catalog items upserted",
		},
		[]string{"type"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamgate_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
