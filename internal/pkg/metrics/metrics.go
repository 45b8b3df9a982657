package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geogrids",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geogrids",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Grid metrics
	CellsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "grid",
		Name:      "cells_computed_total",
		Help:      "Total cells computed, by operation",
	}, []string{"operation"})

	HashPrecision = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geogrids",
		Subsystem: "grid",
		Name:      "hash_precision_bits",
		Help:      "Requested hash precision in bits",
		Buckets:   prometheus.LinearBuckets(3, 6, 11),
	})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geogrids",
		Subsystem: "grid",
		Name:      "batch_size_points",
		Help:      "Number of points per batch encode",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// Word encoder metrics
	WordDecodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "words",
		Name:      "decodes_total",
		Help:      "Word decodes by wordlist and result (ok, truncated, failed)",
	}, []string{"wordlist", "result"})

	WordEncodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "words",
		Name:      "encodes_total",
		Help:      "Word encodes by wordlist",
	}, []string{"wordlist"})

	// Events
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published to NATS",
	}, []string{"subject"})

	EventPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "events",
		Name:      "publish_errors_total",
		Help:      "Events that failed to publish",
	}, []string{"subject"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrids",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geogrids",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrids",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrids",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geogrids",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// route patterns only; raw paths of unmatched requests are unbounded
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat read by UpdateDBPoolMetrics.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool stats into the pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
