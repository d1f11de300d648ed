package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Workflow metrics
var (
	travelRequestsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_requests_submitted_total",
			Help: "Travel requests accepted for approval.",
		},
		[]string{"request_type"},
	)

	travelRequestDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_request_decisions_total",
			Help: "Approve and reject decisions committed.",
		},
		[]string{"decision"},
	)

	routingFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_request_routing_failures_total",
			Help: "Submissions refused because no approver could be resolved.",
		},
		[]string{"request_type"},
	)

	notificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "In-app notifications persisted.",
		},
		[]string{"type"},
	)

	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections",
		Help: "Open websocket connections.",
	})
)

var registerOnce sync.Once

// Init registers every collector in the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			travelRequestsSubmitted, travelRequestDecisions, routingFailures,
			notificationsCreated, wsConnections,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records RPS, latency and in-flight requests per route template.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	}
}

func RecordSubmission(requestType string) {
	travelRequestsSubmitted.WithLabelValues(requestType).Inc()
}

func RecordDecision(decision string) {
	travelRequestDecisions.WithLabelValues(decision).Inc()
}

func RecordRoutingFailure(requestType string) {
	routingFailures.WithLabelValues(requestType).Inc()
}

func RecordNotification(notificationType string) {
	notificationsCreated.WithLabelValues(notificationType).Inc()
}

func WebsocketConnected() {
	wsConnections.Inc()
}

func WebsocketDisconnected() {
	wsConnections.Dec()
}
