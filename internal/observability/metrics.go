package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "write_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedCacheLookups counts feed cache lookups by result (hit or miss).
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_feed_cache_lookups_total",
		Help: "Total feed cache lookups by result",
	}, []string{"result"})

	// ViewInvalidations counts cached view invalidations by view name.
	ViewInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_view_invalidations_total",
		Help: "Total cached view invalidations by view",
	}, []string{"view"})

	// PostsCreated counts created posts, labeled by whether they carry an image.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_posts_created_total",
		Help: "Total posts created",
	}, []string{"with_image"})

	// FriendRequestTransitions counts friend request state transitions.
	FriendRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_friend_request_transitions_total",
		Help: "Total friend request state transitions",
	}, []string{"transition"})

	// ImageUploadBytes records uploaded image sizes in bytes.
	ImageUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "write_image_upload_bytes",
		Help:    "Uploaded post image sizes in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "write_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "write_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordFeedCacheHit records a feed cache hit or miss.
func RecordFeedCacheHit(hit bool) {
	if hit {
		FeedCacheLookups.WithLabelValues("hit").Inc()
	} else {
		FeedCacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordViewInvalidation records an invalidation of the named cached view.
func RecordViewInvalidation(view string) {
	ViewInvalidations.WithLabelValues(view).Inc()
}
