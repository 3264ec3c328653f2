// Package metrics provides Prometheus instrumentation for the stats service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Computations counts stat computations by operation and outcome (ok|error).
	Computations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_stats_computations_total",
		Help: "Stat computations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ComputationDuration tracks how long each operation takes end to end.
	ComputationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hockey_stats_computation_duration_seconds",
		Help:    "Stat computation latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"operation"})

	// CacheLookups counts cache reads by kind and result (hit|miss|error|bypass).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_stats_cache_lookups_total",
		Help: "Stats cache lookups by kind and result",
	}, []string{"kind", "result"})

	// PartialFailures counts players excluded from a batch result.
	PartialFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_stats_partial_failures_total",
		Help: "Players excluded from batch results after a failed computation",
	}, []string{"operation"})

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_stats_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hockey_stats_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "route"})
)

// ObserveComputation records the outcome and latency of one operation.
func ObserveComputation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Computations.WithLabelValues(operation, outcome).Inc()
	ComputationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics labelled by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
