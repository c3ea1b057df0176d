// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "amp"

// Metrics owns a private registry so tests can build as many as they like.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	logins           *prometheus.CounterVec
	oauthRejections  *prometheus.CounterVec
	emails           *prometheus.CounterVec
	activityFailures *prometheus.CounterVec
	catalogFallbacks *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_logins_total",
			Help:      "Admin sign-in attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		oauthRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_rejections_total",
			Help:      "Rejected OAuth callbacks by reason.",
		}, []string{"reason"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Outgoing emails by delivery status.",
		}, []string{"status"}),
		activityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_log_failures_total",
			Help:      "Activity log writes that failed, by stage.",
		}, []string{"stage"}),
		catalogFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fallbacks_total",
			Help:      "Public catalog requests served from the embedded catalog.",
		}, []string{"resource"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.logins,
		m.oauthRejections,
		m.emails,
		m.activityFailures,
		m.catalogFallbacks,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Login outcomes.
const (
	LoginSuccess  = "success"
	LoginRejected = "rejected"
	LoginError    = "error"
)

// ObserveLogin counts a sign-in attempt. method is "password" or "google".
func (m *Metrics) ObserveLogin(method, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, outcome).Inc()
}

// ObserveOAuthRejection counts a rejected OAuth callback.
func (m *Metrics) ObserveOAuthRejection(reason string) {
	if m == nil {
		return
	}
	m.oauthRejections.WithLabelValues(reason).Inc()
}

// ObserveEmail counts an outgoing email by its logged status.
func (m *Metrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(status).Inc()
}

// ObserveActivityFailure counts a failed activity-log stage ("queue", "store").
func (m *Metrics) ObserveActivityFailure(stage string) {
	if m == nil {
		return
	}
	m.activityFailures.WithLabelValues(stage).Inc()
}

// ObserveCatalogFallback counts a public request answered from the embedded catalog.
func (m *Metrics) ObserveCatalogFallback(resource string) {
	if m == nil {
		return
	}
	m.catalogFallbacks.WithLabelValues(resource).Inc()
}
