package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"avroute/internal/airport"
	"avroute/internal/config"
	"avroute/internal/enrich"
	"avroute/internal/filter"
	"avroute/internal/metrics"
	"avroute/internal/planner"
	"avroute/internal/rank"
	"avroute/internal/session"
)

// Server wires the engine components behind the HTTP surface.
type Server struct {
	Cfg      config.Config
	Airports airport.Repository
	Sessions session.Store
	Enrich   enrich.Provider // nil when no enrichment source is configured
	Filters  *filter.Registry
	Ranker   *rank.Registry
	Planner  *planner.Planner
	Broker   EventBroker
}

// NewServer selects backends from the environment: DATABASE_URL for the
// airport catalog, REDIS_URL for sessions and the event broker, ENRICH_DB
// for the enrichment database. Everything runs in-process when unset.
func NewServer(cfg config.Config) (*Server, error) {
	var repo airport.Repository
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pg, err := airport.NewPostgres(dsn)
		if err != nil {
			return nil, fmt.Errorf("api: airport backend: %w", err)
		}
		repo = pg
	} else {
		repo = airport.NewMemory(airport.Seed())
	}

	ttl := time.Duration(cfg.SessionTTLSec) * time.Second
	var sessions session.Store
	var broker EventBroker
	if url := strings.TrimSpace(os.Getenv("REDIS_URL")); url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("api: redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		sessions = session.NewRedis(rdb, ttl)
		broker = NewRedisBroker(rdb)
	} else {
		sessions = session.NewMemory(ttl)
		broker = NewBroker()
	}

	var en enrich.Provider
	if path := strings.TrimSpace(os.Getenv("ENRICH_DB")); path != "" {
		db, err := enrich.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("api: enrichment backend: %w", err)
		}
		en = db
	}

	return &Server{
		Cfg:      cfg,
		Airports: repo,
		Sessions: sessions,
		Enrich:   en,
		Filters:  filter.NewRegistry(),
		Ranker:   rank.NewRegistry(),
		Planner: planner.New(planner.Config{
			CorridorWidthNM: cfg.CorridorWidthNM,
			MinProgressNM:   cfg.MinProgressNM,
			NodeBudget:      cfg.NodeBudget,
			MaxAutoStops:    cfg.MaxAutoStops,
		}),
		Broker: broker,
	}, nil
}

// NewJanitor creates the background sweeper for expired sessions. Each sweep
// re-derives the active-sessions gauge from the store, so sessions the store
// expired on its own (lazily, or via Redis key TTLs) stop counting.
func (s *Server) NewJanitor() *session.Janitor {
	j := session.NewJanitor(s.Sessions, time.Duration(s.Cfg.JanitorPeriodSec)*time.Second)
	j.OnSweep(func(int) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := s.Sessions.Count(ctx)
		if err != nil {
			log.Printf("session janitor: count failed: %v", err)
			return
		}
		metrics.ActiveSessions.Set(float64(n))
	})
	return j
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ReadyHandler handles GET /readyz: the catalog must answer before we accept
// traffic.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Airports.All(r.Context()); err != nil {
		log.Printf("readyz: catalog unavailable: %v", err)
		writeProblem(w, r, http.StatusServiceUnavailable, "Not ready", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
