// Package metrics defines the application's Prometheus metrics.
//
// Everything registers against an application-owned registry (not the
// global default) and is served on /metrics by promhttp.
//
// Naming follows Prometheus conventions: inkwell_ prefix, _total suffix for
// counters, _seconds for duration histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "Total number of HTTP requests by method, path, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDurationSeconds is a histogram of request handling time.
	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// LoginsTotal counts login attempts by outcome ("success", "failure").
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_logins_total",
			Help: "Total login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// RegistrationsTotal counts completed registrations.
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_registrations_total",
			Help: "Total completed user registrations.",
		},
	)

	// PostWritesTotal counts post mutations by operation
	// ("create", "update", "delete").
	PostWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_post_writes_total",
			Help: "Total post mutations by operation.",
		},
		[]string{"op"},
	)
)

// NewRegistry returns a registry with all application metrics plus the
// standard Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		LoginsTotal,
		RegistrationsTotal,
		PostWritesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
