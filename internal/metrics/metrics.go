package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Freshness refresh metrics
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_refresh_runs_total",
			Help: "Total number of freshness refresh runs",
		},
		[]string{"store", "outcome"},
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statdesk_refresh_duration_seconds",
			Help:    "Duration of freshness refresh runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)

	DocumentsTagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_documents_tagged_total",
			Help: "Total number of documents tagged with freshness attributes",
		},
		[]string{"store"},
	)

	StoreReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "statdesk_store_ready",
			Help: "Whether freshness tagging succeeded for a store (1) or not (0)",
		},
		[]string{"store"},
	)

	// Provider metrics
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_provider_calls_total",
			Help: "Total number of remote provider API calls",
		},
		[]string{"operation", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statdesk_provider_call_duration_seconds",
			Help:    "Duration of remote provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Query metrics
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_queries_processed_total",
			Help: "Total number of queries processed",
		},
		[]string{"store", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statdesk_query_duration_seconds",
			Help:    "Duration of query processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)

	GroundingRefusals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statdesk_grounding_refusals_total",
			Help: "Total number of queries refused because retrieval found no evidence",
		},
		[]string{"store"},
	)
)
