package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	UsersRegistered   prometheus.Counter
	CheckoutsCreated  *prometheus.CounterVec
	WorkbooksPurchase prometheus.Counter
	AccessDenied      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "aaeducates_users_registered_total",
			Help: "Total number of identities created through registration",
		}),
		CheckoutsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aaeducates_checkout_sessions_total",
			Help: "Checkout sessions created, by payment type",
		}, []string{"payment_type"}),
		WorkbooksPurchase: factory.NewCounter(prometheus.CounterOpts{
			Name: "aaeducates_workbook_purchases_total",
			Help: "Workbook purchases materialised from verified payments",
		}),
		AccessDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aaeducates_access_denied_total",
			Help: "Authorization denials by resource kind and operation",
		}, []string{"kind", "operation"}),
	}
}

// IncrementUsersRegistered increments the registrations counter by 1
func (m *Metrics) IncrementUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

// IncrementCheckouts counts a created checkout session
func (m *Metrics) IncrementCheckouts(paymentType string) {
	if m == nil {
		return
	}
	m.CheckoutsCreated.WithLabelValues(paymentType).Inc()
}

// IncrementWorkbookPurchases counts a materialised workbook purchase
func (m *Metrics) IncrementWorkbookPurchases() {
	if m == nil {
		return
	}
	m.WorkbooksPurchase.Inc()
}

// IncrementAccessDenied counts an authorization denial
func (m *Metrics) IncrementAccessDenied(kind, operation string) {
	if m == nil {
		return
	}
	m.AccessDenied.WithLabelValues(kind, operation).Inc()
}

// Middleware records request counts and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
