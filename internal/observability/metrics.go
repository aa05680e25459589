package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorTotal       *prometheus.CounterVec
	complaintCreated *prometheus.CounterVec
	commentAppended  prometheus.Counter
	activityDropped  prometheus.Counter
	wsClients        prometheus.Gauge
	notificationSent *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "problemlog_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "problemlog_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "problemlog_http_errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"route", "method", "code"}),
		complaintCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "problemlog_complaints_created_total",
			Help: "Complaints created by severity.",
		}, []string{"severity"}),
		commentAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "problemlog_complaint_comments_total",
			Help: "Comments appended to complaint threads.",
		}),
		activityDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "problemlog_activity_log_dropped_total",
			Help: "Activity entries that could not be stored.",
		}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "problemlog_ws_clients",
			Help: "Connected live-feed websocket clients.",
		}),
		notificationSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "problemlog_notifications_total",
			Help: "Outbound notifications by kind and status.",
		}, []string{"kind", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(route, method, code).Inc()
}

// ComplaintCreated counts a new complaint.
func (m *Metrics) ComplaintCreated(severity string) {
	if m == nil {
		return
	}
	m.complaintCreated.WithLabelValues(severity).Inc()
}

// CommentAppended counts a new thread comment.
func (m *Metrics) CommentAppended() {
	if m == nil {
		return
	}
	m.commentAppended.Inc()
}

// ActivityDropped counts an activity entry lost to a storage error.
func (m *Metrics) ActivityDropped() {
	if m == nil {
		return
	}
	m.activityDropped.Inc()
}

// SetWSClients reports the live-feed client count.
func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

// NotificationSent counts an outbound notification attempt.
func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.notificationSent.WithLabelValues(kind, status).Inc()
}
