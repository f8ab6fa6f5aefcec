package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/leave-tracker/timeoff"
)

// Metrics holds the Prometheus collectors of the server on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	leaveEvents     *prometheus.CounterVec
	approvedDays    *prometheus.CounterVec
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	leaveEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_request_events_total",
		Help: "Leave request lifecycle events by type and category",
	}, []string{"event", "category"})

	approvedDays := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_approved_working_days_total",
		Help: "Working days debited by approvals",
	}, []string{"category"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(leaveEvents, approvedDays, requestTotal, requestDuration)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		leaveEvents:     leaveEvents,
		approvedDays:    approvedDays,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Observe subscribes to the service's lifecycle events. The returned func
// stops counting.
func (m *Metrics) Observe(rs *timeoff.RequestService) func() {
	return rs.Subscribe(m.record)
}

func (m *Metrics) record(ev timeoff.Event) {
	m.leaveEvents.WithLabelValues(string(ev.Type), string(ev.Request.Category)).Inc()
	if ev.Type == timeoff.EventApproved {
		m.approvedDays.WithLabelValues(string(ev.Request.Category)).Add(float64(ev.Request.WorkingDays))
	}
}

// Middleware counts requests by their chi route pattern, so ids in the path
// do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
