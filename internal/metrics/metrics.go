package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// PlanRequests counts route planning calls by outcome
	PlanRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_plan_requests_total", Help: "Route planning requests by outcome."},
		[]string{"outcome"},
	)
	// PlanNodesExpanded tracks search effort per successful plan
	PlanNodesExpanded = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_plan_nodes_expanded", Help: "Search nodes expanded per plan.", Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2000}},
	)
	// ActiveSessions gauges live route-building sessions
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "route_sessions_active", Help: "Route sessions currently stored."},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PlanRequests)
		Registry.MustRegister(PlanNodesExpanded)
		Registry.MustRegister(ActiveSessions)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
