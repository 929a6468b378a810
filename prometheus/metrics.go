package prometheus

import (
	"time"

	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter        prometheus.Counter
	RegisterCounter     prometheus.Counter
	AuthErrorsCounter   prometheus.CounterVec
	TokensIssuedCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Order workflow metrics
	OrdersCreatedCounter prometheus.CounterVec
	OrderFailuresCounter prometheus.CounterVec

	// Inventory metrics
	StockMovementsCounter prometheus.CounterVec

	// Notification metrics
	NotificationErrorsCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_register_attempts_total",
			Help: "Total number of registration attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	TokensIssuedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	OrdersCreatedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"payment_type"},
	)

	OrderFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_failures_total",
			Help: "Total number of rejected order creations",
		},
		[]string{"reason"},
	)

	StockMovementsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of stock movements recorded",
		},
		[]string{"type"},
	)

	NotificationErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_notification_errors_total",
			Help: "Total number of swallowed notification failures",
		},
	)
}

// RecordAuthError increments the counter for a category of auth failure
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordOrderFailure increments the counter for a rejected order
func RecordOrderFailure(reason string) {
	OrderFailuresCounter.WithLabelValues(reason).Inc()
}

// RecordStockMovement increments the movement counter per kind
func RecordStockMovement(kind string) {
	StockMovementsCounter.WithLabelValues(kind).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation; use with defer and time.Now()
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}
