package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"avroute/internal/metrics"
)

// Routes builds the service mux. Shared between main and the tests so both
// exercise the same wiring.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Airports
	mux.HandleFunc("/v1/airports/filter", s.FilterAirportsHandler)
	mux.HandleFunc("/v1/airports/rank", s.RankAirportsHandler)

	// Route planning
	mux.HandleFunc("/v1/route/plan", s.PlanRouteHandler)
	mux.HandleFunc("/v1/route/first-stops", s.FirstStopsHandler)

	// Sessions
	mux.HandleFunc("/v1/sessions", s.SessionsHandler)
	mux.HandleFunc("/v1/sessions/", s.SessionByIDHandler) // includes /confirm, /first-stops, /stream

	// Health
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)

	// Metrics
	metrics.RegisterDefault()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return mux
}
