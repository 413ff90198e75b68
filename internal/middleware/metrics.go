package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const rpcPrefix = "/billsplit.v1."

// Metrics groups the Prometheus collectors exported by the server.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LinksCreated    prometheus.Counter
	LinksResolved   prometheus.Counter

	procedures map[string]struct{}
}

// NewMetrics creates the server collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer. Requests to the given RPC
// procedures are labelled by procedure path; any other RPC path is "unknown".
func NewMetrics(namespace string, reg prometheus.Registerer, procedures ...string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
		LinksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_links_created_total",
			Help:      "Total number of share links created.",
		}),
		LinksResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_links_resolved_total",
			Help:      "Total number of share links resolved.",
		}),
		procedures: make(map[string]struct{}, len(procedures)),
	}
	for _, p := range procedures {
		m.procedures[p] = struct{}{}
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.LinksCreated, m.LinksResolved)
	return m
}

// Instrument records request counts and latency for every request.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := newStatusRecorder(w)
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := m.routeLabel(r.URL.Path)
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).
			Observe(float64(time.Since(start)) / float64(time.Millisecond))
	})
}

// routeLabel collapses request paths into a bounded set of label values.
func (m *Metrics) routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, rpcPrefix):
		if _, ok := m.procedures[path]; ok {
			return path
		}
		return "unknown"
	case strings.HasPrefix(path, "/s/"):
		return "/s/{id}"
	case path == "/metrics" || path == "/healthz":
		return path
	default:
		return "static"
	}
}
