// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmorate_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filmorate_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// FriendshipTransitions counts friendship state changes, including no-ops.
	FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmorate_friendship_transitions_total",
		Help: "Friendship transitions by kind",
	}, []string{"transition"})

	// LikeOperations counts like mutations by operation and result.
	LikeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmorate_like_operations_total",
		Help: "Like operations by operation and result",
	}, []string{"operation", "result"})

	// RankingDuration tracks how long a popularity ranking takes to compute.
	RankingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "filmorate_ranking_duration_seconds",
		Help:    "Popular film ranking duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmorate_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// SnapshotsPublished counts popularity snapshot uploads by result.
	SnapshotsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmorate_snapshots_published_total",
		Help: "Popular film snapshot uploads by result",
	}, []string{"result"})
)

// Result labels a finished operation.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
