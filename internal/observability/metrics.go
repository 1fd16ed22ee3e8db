package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostActions counts post service operations by action and outcome.
	PostActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firenet_post_actions_total",
		Help: "Total post service operations by action and outcome",
	}, []string{"action", "outcome"})

	// CascadeDeletes records how many comments a post deletion removed.
	CascadeDeletes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "firenet_cascade_deleted_comments",
		Help:    "Number of comments removed per post deletion",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
	})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firenet_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firenet_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// EventsPublished counts post events by sink and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firenet_events_published_total",
		Help: "Post events published by sink and outcome",
	}, []string{"sink", "outcome"})

	// WebSocketConnections is the gauge of open feed connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "firenet_websocket_connections",
		Help: "Number of open feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firenet_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// RecordPostAction increments PostActions with "ok" or "error" depending on err.
func RecordPostAction(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PostActions.WithLabelValues(action, outcome).Inc()
}
