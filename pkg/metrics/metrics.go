package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Every Record method is a no-op on
// a nil *Metrics so services can run without instrumentation.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	LeadsListed    prometheus.Counter
	LeadMutations  *prometheus.CounterVec
	BulkRows       *prometheus.CounterVec
	ViewMutations  *prometheus.CounterVec
	ExportsCreated *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBConnections   prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a new Metrics instance registered with reg. A nil reg uses
// the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		LeadsListed: factory.NewCounter(prometheus.CounterOpts{
			Name: "leads_listed_total",
			Help: "Total number of lead list queries served",
		}),
		LeadMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_mutations_total",
				Help: "Total number of single-lead writes",
			},
			[]string{"operation"}, // create, patch
		),
		BulkRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_bulk_rows_total",
				Help: "Total number of rows affected by bulk operations",
			},
			[]string{"operation"}, // delete, edit, duplicate
		),
		ViewMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saved_view_mutations_total",
				Help: "Total number of saved view writes",
			},
			[]string{"operation"}, // create, update, delete
		),
		ExportsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of exports created",
			},
			[]string{"format"}, // csv, xlsx
		),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		// Cache metrics
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, e.g. /api/leads/:id

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordLeadList increments the list counter
func (m *Metrics) RecordLeadList() {
	if m == nil {
		return
	}
	m.LeadsListed.Inc()
}

// RecordLeadMutation counts a single-lead write
func (m *Metrics) RecordLeadMutation(operation string) {
	if m == nil {
		return
	}
	m.LeadMutations.WithLabelValues(operation).Inc()
}

// RecordBulk adds the rows affected by a bulk operation
func (m *Metrics) RecordBulk(operation string, rows int64) {
	if m == nil {
		return
	}
	m.BulkRows.WithLabelValues(operation).Add(float64(rows))
}

// RecordViewMutation counts a saved view write
func (m *Metrics) RecordViewMutation(operation string) {
	if m == nil {
		return
	}
	m.ViewMutations.WithLabelValues(operation).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated(format string) {
	if m == nil {
		return
	}
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// RecordDBQuery records database query duration
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnections updates active database connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	if m == nil {
		return
	}
	m.DBConnections.Set(count)
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
