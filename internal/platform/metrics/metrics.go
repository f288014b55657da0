// Package metrics exposes Prometheus instrumentation for the analysis pipeline,
// the candle cache and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	AnalysisRequests *prometheus.CounterVec   // labels: outcome
	StageDuration    *prometheus.HistogramVec // labels: stage
	CacheLookups     *prometheus.CounterVec   // labels: result
	HTTPRequests     *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration     *prometheus.HistogramVec // labels: method, route

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Analysis requests by outcome (success or error kind)",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_stage_duration_seconds",
			Help:    "Duration of each analysis pipeline stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candle_cache_lookups_total",
			Help: "Candle cache lookups by result",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.AnalysisRequests,
		m.StageDuration,
		m.CacheLookups,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordOutcome counts a finished analysis request.
func (m *Metrics) RecordOutcome(outcome string) {
	m.AnalysisRequests.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts a candle cache lookup.
func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Middleware counts requests per matched route. Unmatched paths share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
