package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MongoConnectionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_mongodb_connection_attempts_total",
			Help: "Total number of MongoDB connection attempts by result",
		},
		[]string{"result"},
	)

	MongoLifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_mongodb_lifecycle_events_total",
			Help: "Total number of MongoDB connection lifecycle events",
		},
		[]string{"event"},
	)

	MongoConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskhub_mongodb_connected",
			Help: "Whether a MongoDB server is currently reachable (1) or not (0)",
		},
	)

	MongoPoolConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskhub_mongodb_pool_connections",
			Help: "Number of open connections in the MongoDB driver pool",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)
