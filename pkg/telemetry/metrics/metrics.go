package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records all Ganymede metrics.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	lastRefresh     *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry. If registry is
// nil a new one is created, with the standard Go and process collectors
// attached.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mercator",
			Subsystem: "ganymede",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mercator",
			Subsystem: "ganymede",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"route"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mercator",
			Subsystem: "ganymede",
			Name:      "git_refresh_total",
			Help:      "Git refresh attempts by environment and result.",
		}, []string{"env", "result"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mercator",
			Subsystem: "ganymede",
			Name:      "git_refresh_duration_seconds",
			Help:      "Git refresh latency by environment.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"env"}),
		lastRefresh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mercator",
			Subsystem: "ganymede",
			Name:      "git_last_successful_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh by environment.",
		}, []string{"env"}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.refreshTotal,
		c.refreshDuration,
		c.lastRefresh,
	)
	return c
}

// Handler returns the /metrics HTTP handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveRefresh records one Git refresh attempt.
func (c *Collector) ObserveRefresh(env string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	} else {
		c.lastRefresh.WithLabelValues(env).SetToCurrentTime()
	}
	c.refreshTotal.WithLabelValues(env, result).Inc()
	c.refreshDuration.WithLabelValues(env).Observe(duration.Seconds())
}
