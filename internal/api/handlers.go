package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"avroute/internal/airport"
	"avroute/internal/filter"
	"avroute/internal/geo"
	"avroute/internal/metrics"
	"avroute/internal/model"
	"avroute/internal/planner"
	"avroute/internal/rank"
	"avroute/internal/session"
)

func (s *Server) filterCtx(ctx context.Context) filter.Context {
	fctx := filter.Context{Ctx: ctx}
	if s.Enrich != nil {
		fctx.Enrich = s.Enrich
	}
	return fctx
}

func (s *Server) rankCtx(ctx context.Context, personaID string) rank.Context {
	rctx := rank.Context{Ctx: ctx, PersonaID: personaID}
	if s.Enrich != nil {
		rctx.Scores = s.Enrich
	}
	return rctx
}

// FilterAirportsHandler handles POST /v1/airports/filter
func (s *Server) FilterAirportsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Filters map[string]any `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	airports, err := s.Airports.All(r.Context())
	if err != nil {
		writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
		return
	}
	out := s.Filters.Apply(airports, req.Filters, s.filterCtx(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"airports": out, "count": len(out)})
}

// RankAirportsHandler handles POST /v1/airports/rank. The request carries
// either a point ("near" + radius) or a route ("from"/"to" + bias); filters
// run before ranking.
func (s *Server) RankAirportsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Near      *model.NavPoint `json:"near"`
		RadiusNM  float64         `json:"radiusNm"`
		From      string          `json:"from"`
		To        string          `json:"to"`
		Bias      string          `json:"bias"`
		Filters   map[string]any  `json:"filters"`
		Strategy  string          `json:"strategy"`
		PersonaID string          `json:"personaId"`
		Max       int             `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if req.Max <= 0 || req.Max > s.Cfg.MaxResults {
		req.Max = s.Cfg.MaxResults
	}
	rctx := s.rankCtx(r.Context(), req.PersonaID)

	var airports []model.Airport
	switch {
	case req.Near != nil:
		radius := req.RadiusNM
		if radius <= 0 {
			radius = 200 // wide enough to populate the overflow bucket
		}
		var err error
		airports, err = s.Airports.NearPoint(r.Context(), *req.Near, radius)
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
			return
		}
		dist := make(map[string]float64, len(airports))
		for _, ap := range airports {
			dist[ap.Ident] = geo.DistanceNM(*req.Near, ap.Point)
		}
		rctx.DistanceFromNM = dist
	case req.From != "" && req.To != "":
		from, to, ok := s.resolvePair(w, r, req.From, req.To)
		if !ok {
			return
		}
		var err error
		airports, err = s.Airports.NearRoute(r.Context(), from.Point, to.Point, s.Cfg.CorridorWidthNM)
		if err != nil {
			writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
			return
		}
		progress := make(map[string]float64, len(airports))
		for _, ap := range airports {
			progress[ap.Ident] = geo.AlongTrackDistanceNM(ap.Point, from.Point, to.Point)
		}
		rctx.ProgressNM = progress
		rctx.RouteLengthNM = geo.DistanceNM(from.Point, to.Point)
		rctx.Bias = rank.Bias(req.Bias)
	default:
		writeProblem(w, r, http.StatusBadRequest, "Invalid rank request", "either near or from/to is required")
		return
	}

	airports = s.Filters.Apply(airports, req.Filters, s.filterCtx(r.Context()))
	out, err := s.Ranker.Rank(airports, req.Strategy, rctx, req.Max)
	if err != nil {
		if errors.Is(err, rank.ErrUnknownStrategy) {
			writeProblem(w, r, http.StatusBadRequest, "Unknown strategy", err.Error())
			return
		}
		writeProblem(w, r, http.StatusInternalServerError, "Ranking failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": out, "count": len(out)})
}

type aircraftIn struct {
	FuelType      string  `json:"fuelType"`
	MinRunwayM    int     `json:"minRunwayM"`
	CruiseSpeedKt float64 `json:"cruiseSpeedKt"`
}

func (a aircraftIn) toModel(defaultCruise float64) model.AircraftRequirements {
	out := model.AircraftRequirements{
		FuelType:      a.FuelType,
		MinRunwayM:    a.MinRunwayM,
		CruiseSpeedKt: a.CruiseSpeedKt,
	}
	if out.CruiseSpeedKt <= 0 {
		out.CruiseSpeedKt = defaultCruise
	}
	return out
}

// resolvePair looks up two idents, writing a problem response on failure.
func (s *Server) resolvePair(w http.ResponseWriter, r *http.Request, fromID, toID string) (model.Airport, model.Airport, bool) {
	from, err := s.Airports.ByIdent(r.Context(), fromID)
	if err != nil {
		s.airportProblem(w, r, fromID, err)
		return model.Airport{}, model.Airport{}, false
	}
	to, err := s.Airports.ByIdent(r.Context(), toID)
	if err != nil {
		s.airportProblem(w, r, toID, err)
		return model.Airport{}, model.Airport{}, false
	}
	if from.Ident == to.Ident {
		writeProblem(w, r, http.StatusBadRequest, "Invalid route", "departure and destination are the same airport")
		return model.Airport{}, model.Airport{}, false
	}
	return from, to, true
}

func (s *Server) airportProblem(w http.ResponseWriter, r *http.Request, ident string, err error) {
	if errors.Is(err, airport.ErrNotFound) {
		writeProblem(w, r, http.StatusNotFound, "Unknown airport", ident)
		return
	}
	writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
}

// corridorCandidates fetches, filters, and scores the airports considered as
// stops between from and to.
func (s *Server) corridorCandidates(r *http.Request, from, to model.Airport, filters map[string]any, personaID string) ([]planner.Candidate, error) {
	airports, err := s.Airports.NearRoute(r.Context(), from.Point, to.Point, s.Cfg.CorridorWidthNM)
	if err != nil {
		return nil, err
	}
	airports = s.Filters.Apply(airports, filters, s.filterCtx(r.Context()))
	rctx := s.rankCtx(r.Context(), personaID)
	out := make([]planner.Candidate, 0, len(airports))
	for _, ap := range airports {
		out = append(out, planner.Candidate{Airport: ap, Desirability: rank.Desirability(rctx, ap)})
	}
	return out, nil
}

// PlanRouteHandler handles POST /v1/route/plan. Planning failures are
// results, not errors: the response reports found=false with a reason.
func (s *Server) PlanRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		From        string         `json:"from"`
		To          string         `json:"to"`
		TargetStops *int           `json:"targetStops"` // absent = auto
		MaxLegNM    float64        `json:"maxLegNm"`
		Filters     map[string]any `json:"filters"`
		PersonaID   string         `json:"personaId"`
		Aircraft    aircraftIn     `json:"aircraft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	from, to, ok := s.resolvePair(w, r, req.From, req.To)
	if !ok {
		return
	}
	targetStops := -1
	if req.TargetStops != nil {
		if *req.TargetStops < 0 {
			writeProblem(w, r, http.StatusBadRequest, "Invalid plan request", "targetStops must be >= 0")
			return
		}
		targetStops = *req.TargetStops
	}
	cands, err := s.corridorCandidates(r, from, to, req.Filters, req.PersonaID)
	if err != nil {
		writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
		return
	}

	route, err := s.Planner.Plan(planner.Request{
		Departure:   from,
		Destination: to,
		TargetStops: targetStops,
		MaxLegNM:    req.MaxLegNM,
		Aircraft:    req.Aircraft.toModel(s.Cfg.DefaultCruiseKt),
		Candidates:  cands,
	})
	if err != nil {
		reason, outcome := planFailure(err)
		if reason == "" {
			writeProblem(w, r, http.StatusInternalServerError, "Planning failed", err.Error())
			return
		}
		metrics.PlanRequests.WithLabelValues(outcome).Inc()
		writeJSON(w, http.StatusOK, map[string]any{"found": false, "reason": reason})
		return
	}
	metrics.PlanRequests.WithLabelValues("ok").Inc()
	metrics.PlanNodesExpanded.Observe(float64(route.NodesExpanded))
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "route": route})
}

func planFailure(err error) (reason, outcome string) {
	switch {
	case errors.Is(err, planner.ErrNoCandidatesInCorridor):
		return "no_candidates_in_corridor", "no_candidates"
	case errors.Is(err, planner.ErrConstraintInfeasible):
		return "constraints_infeasible", "infeasible"
	case errors.Is(err, planner.ErrSearchExhausted):
		return "search_exhausted", "exhausted"
	}
	return "", ""
}

// FirstStopsHandler handles POST /v1/route/first-stops
func (s *Server) FirstStopsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		From          string         `json:"from"`
		To            string         `json:"to"`
		MaxDistanceNM float64        `json:"maxDistanceNm"`
		Filters       map[string]any `json:"filters"`
		PersonaID     string         `json:"personaId"`
		Max           int            `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	from, to, ok := s.resolvePair(w, r, req.From, req.To)
	if !ok {
		return
	}
	if req.Max <= 0 || req.Max > s.Cfg.MaxResults {
		req.Max = s.Cfg.MaxResults
	}
	cands, err := s.corridorCandidates(r, from, to, req.Filters, req.PersonaID)
	if err != nil {
		writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
		return
	}
	out := s.Planner.FirstStopCandidates(from, to, req.MaxDistanceNM, cands, req.Max)
	writeJSON(w, http.StatusOK, map[string]any{"candidates": out, "count": len(out)})
}

// SessionsHandler handles POST /v1/sessions
func (s *Server) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		From        string `json:"from"`
		To          string `json:"to"`
		TargetStops int    `json:"targetStops"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if req.TargetStops < 1 {
		writeProblem(w, r, http.StatusBadRequest, "Invalid session request", "targetStops must be >= 1")
		return
	}
	from, to, ok := s.resolvePair(w, r, req.From, req.To)
	if !ok {
		return
	}
	sess := session.New(from.Ident, to.Ident, req.TargetStops)
	if err := s.Sessions.Create(r.Context(), sess); err != nil {
		writeProblem(w, r, http.StatusInternalServerError, "Create session failed", err.Error())
		return
	}
	metrics.ActiveSessions.Inc()
	s.Broker.Publish(sess.ID, SessionEvent{Type: "session.created", Data: map[string]any{"sessionId": sess.ID}})
	writeJSON(w, http.StatusCreated, sess)
}

// SessionByIDHandler handles /v1/sessions/{id} and its subresources:
// confirm, first-stops, and stream.
func (s *Server) SessionByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}
	if id == "" {
		writeProblem(w, r, http.StatusBadRequest, "Invalid session id", "")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		s.getSession(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		s.deleteSession(w, r, id)
	case sub == "confirm" && r.Method == http.MethodPost:
		s.confirmStop(w, r, id)
	case sub == "first-stops" && r.Method == http.MethodGet:
		s.sessionFirstStops(w, r, id)
	case sub == "stream" && r.Method == http.MethodGet:
		s.StreamHandler(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.sessionProblem(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.sessionProblem(w, r, err)
		return
	}
	metrics.ActiveSessions.Dec()
	s.Broker.Publish(id, SessionEvent{Type: "session.deleted", Data: map[string]any{"sessionId": id}})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) confirmStop(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Ident string `json:"ident"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	ap, err := s.Airports.ByIdent(r.Context(), req.Ident)
	if err != nil {
		s.airportProblem(w, r, req.Ident, err)
		return
	}
	sess, err := s.Sessions.ConfirmStop(r.Context(), id, ap.Ident)
	if err != nil {
		s.sessionProblem(w, r, err)
		return
	}
	s.Broker.Publish(sess.ID, SessionEvent{Type: "session.stop_confirmed", Data: map[string]any{
		"sessionId":      sess.ID,
		"ident":          ap.Ident,
		"confirmedStops": sess.ConfirmedStops,
		"complete":       sess.IsComplete(),
	}})
	if sess.IsComplete() {
		s.Broker.Publish(sess.ID, SessionEvent{Type: "session.completed", Data: map[string]any{"sessionId": sess.ID}})
	}
	writeJSON(w, http.StatusOK, sess)
}

// sessionFirstStops suggests next-stop candidates from the last confirmed
// stop (or the departure) toward the destination.
func (s *Server) sessionFirstStops(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.sessionProblem(w, r, err)
		return
	}
	originID := sess.Departure
	if n := len(sess.ConfirmedStops); n > 0 {
		originID = sess.ConfirmedStops[n-1]
	}
	origin, err := s.Airports.ByIdent(r.Context(), originID)
	if err != nil {
		s.airportProblem(w, r, originID, err)
		return
	}
	dest, err := s.Airports.ByIdent(r.Context(), sess.Destination)
	if err != nil {
		s.airportProblem(w, r, sess.Destination, err)
		return
	}

	q := r.URL.Query()
	maxDist, _ := strconv.ParseFloat(q.Get("maxDistanceNm"), 64)
	max, _ := strconv.Atoi(q.Get("max"))
	if max <= 0 || max > s.Cfg.MaxResults {
		max = s.Cfg.MaxResults
	}
	cands, err := s.corridorCandidates(r, origin, dest, nil, q.Get("personaId"))
	if err != nil {
		writeProblem(w, r, http.StatusInternalServerError, "Catalog unavailable", err.Error())
		return
	}
	// stops already confirmed are not offered again
	fresh := cands[:0]
	for _, c := range cands {
		if !sess.HasStop(c.Airport.Ident) && c.Airport.Ident != sess.Departure {
			fresh = append(fresh, c)
		}
	}
	out := s.Planner.FirstStopCandidates(origin, dest, maxDist, fresh, max)
	writeJSON(w, http.StatusOK, map[string]any{"candidates": out, "count": len(out), "origin": origin.Ident})
}

func (s *Server) sessionProblem(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, "Session not found", "")
	case errors.Is(err, session.ErrSessionComplete):
		writeProblem(w, r, http.StatusConflict, "Session complete", "all target stops already confirmed")
	default:
		writeProblem(w, r, http.StatusInternalServerError, "Session store failed", err.Error())
	}
}
