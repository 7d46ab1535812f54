// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gocatalog"

var (
	// ThumbnailRequestsTotal tracks thumbnail lookups.
	// Labels:
	//   - result: hit, generated, failed
	ThumbnailRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_requests_total",
			Help:      "Total number of thumbnail requests by outcome",
		},
		[]string{"result"},
	)

	// ThumbnailGenerationSeconds observes ffmpeg frame extraction latency.
	ThumbnailGenerationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "thumbnail_generation_seconds",
			Help:      "Time spent extracting a thumbnail frame",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// LockOperationsTotal tracks distributed lock operations.
	// Labels:
	//   - operation: acquire, release
	//   - status: success, contended, error
	LockOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_operations_total",
			Help:      "Total number of distributed lock operations",
		},
		[]string{"operation", "status"},
	)

	// DBQueriesTotal tracks database queries.
	// Labels:
	//   - query_type: select, insert, update, delete
	//   - table: items, item_media, users
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// MediaEventsTotal tracks media events handled by the worker.
	// Labels:
	//   - type: uploaded, deleted
	//   - status: success, error
	MediaEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_events_total",
			Help:      "Total number of media events processed",
		},
		[]string{"type", "status"},
	)

	// QueueDeliveriesTotal tracks how consumed deliveries were settled.
	// Labels:
	//   - outcome: acked, retried, dropped, malformed
	QueueDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_deliveries_total",
			Help:      "Total number of queue deliveries by settlement outcome",
		},
		[]string{"outcome"},
	)
)

// Thumbnail result constants.
const (
	ThumbnailHit       = "hit"
	ThumbnailGenerated = "generated"
	ThumbnailFailed    = "failed"
)

// Lock operation constants.
const (
	LockOpAcquire = "acquire"
	LockOpRelease = "release"

	LockStatusSuccess   = "success"
	LockStatusContended = "contended"
	LockStatusError     = "error"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
	DBQueryDelete = "delete"
)

// Table name constants.
const (
	TableItems     = "items"
	TableItemMedia = "item_media"
	TableUsers     = "users"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Event status constants.
const (
	EventStatusSuccess = "success"
	EventStatusError   = "error"
)

// Queue delivery outcome constants.
const (
	DeliveryAcked     = "acked"
	DeliveryRetried   = "retried"
	DeliveryDropped   = "dropped"
	DeliveryMalformed = "malformed"
)
