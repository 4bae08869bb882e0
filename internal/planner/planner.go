// Package planner searches for multi-stop route plans through a corridor of
// candidate airports. The search is synchronous and CPU-bound: all candidate
// data is materialized before it starts, so runtime is bounded by a node
// budget rather than a wall clock.
package planner

import (
	"container/heap"
	"errors"
	"math"

	"github.com/google/uuid"

	"avroute/internal/geo"
	"avroute/internal/model"
	"avroute/internal/rank"
)

// Reportable planning outcomes. These are results, not exceptions: callers
// present them as "no route found" with the reason available for logging.
var (
	ErrNoCandidatesInCorridor = errors.New("no candidate airports in corridor")
	ErrConstraintInfeasible   = errors.New("no feasible route under constraints")
	ErrSearchExhausted        = errors.New("search budget exhausted")
)

// Cost model constants, all in nm-equivalent units.
const (
	groundTimePenaltyNM = 30.0   // fixed dwell cost per intermediate stop
	desirabilityBonusNM = 50.0   // max discount for a perfectly rated stop
	fuelPenaltyNM       = 500.0  // required fuel type unavailable
	runwayPenaltyNM     = 1000.0 // longest runway below aircraft minimum
)

// Config bounds the corridor and the search.
type Config struct {
	CorridorWidthNM float64
	MinProgressNM   float64 // minimum along-route progress increment between stops
	NodeBudget      int
	MaxAutoStops    int // cap when the caller asks for "auto" stop count
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{CorridorWidthNM: 50, MinProgressNM: 25, NodeBudget: 2000, MaxAutoStops: 4}
}

// Candidate is an airport already fetched, filtered, and scored. The search
// performs no I/O.
type Candidate struct {
	Airport      model.Airport
	Desirability float64 // 0..100
}

// Request describes one planning call. TargetStops < 0 means "auto";
// otherwise it is the maximum number of intermediate stops. MaxLegNM 0
// leaves leg length unbounded.
type Request struct {
	Departure   model.Airport
	Destination model.Airport
	TargetStops int
	MaxLegNM    float64
	Aircraft    model.AircraftRequirements
	Candidates  []Candidate
}

// Planner runs corridor-restricted best-first route searches.
type Planner struct {
	cfg Config
}

// New returns a Planner; zero config fields fall back to defaults.
func New(cfg Config) *Planner {
	def := DefaultConfig()
	if cfg.CorridorWidthNM <= 0 {
		cfg.CorridorWidthNM = def.CorridorWidthNM
	}
	if cfg.MinProgressNM <= 0 {
		cfg.MinProgressNM = def.MinProgressNM
	}
	if cfg.NodeBudget <= 0 {
		cfg.NodeBudget = def.NodeBudget
	}
	if cfg.MaxAutoStops <= 0 {
		cfg.MaxAutoStops = def.MaxAutoStops
	}
	return &Planner{cfg: cfg}
}

// corridorNode is one candidate admitted to the search space.
type corridorNode struct {
	ap         model.Airport
	des        float64
	progressNM float64 // along-track projection onto the direct path
}

// searchState indexes into the corridor node slice; depIdx and destIdx are
// the two virtual endpoints.
const (
	depIdx  = -1
	destIdx = -2
)

type searchState struct {
	candIdx  int
	stops    int
	g        float64 // accumulated cost
	f        float64 // g + heuristic
	seq      int     // insertion order, FIFO tie-break
	progress float64
	parent   *searchState
}

type stateQueue []*searchState

func (q stateQueue) Len() int { return len(q) }
func (q stateQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *stateQueue) Push(x any)   { *q = append(*q, x.(*searchState)) }
func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Plan searches for the minimum-cost stop sequence from departure to
// destination. On failure it returns one of the typed outcomes above.
func (p *Planner) Plan(req Request) (model.PlannedRoute, error) {
	direct := geo.DistanceNM(req.Departure.Point, req.Destination.Point)

	// No intermediate stops requested: the answer is the direct leg.
	if req.TargetStops == 0 {
		return p.assemble(req, nil, nil), nil
	}

	maxStops := req.TargetStops
	if maxStops < 0 {
		maxStops = p.autoStops(direct, req.MaxLegNM)
	}

	nodes := p.corridorNodes(req)
	if len(nodes) == 0 {
		return model.PlannedRoute{}, ErrNoCandidatesInCorridor
	}

	route, expanded, err := p.search(req, nodes, maxStops, direct)
	if err != nil {
		return model.PlannedRoute{}, err
	}
	out := p.assemble(req, route, nodes)
	out.NodesExpanded = expanded
	return out, nil
}

func (p *Planner) autoStops(directNM, maxLegNM float64) int {
	if maxLegNM <= 0 {
		return p.cfg.MaxAutoStops
	}
	needed := int(math.Ceil(directNM/maxLegNM)) - 1
	if needed < 1 {
		needed = 1
	}
	if needed > p.cfg.MaxAutoStops {
		needed = p.cfg.MaxAutoStops
	}
	return needed
}

// corridorNodes admits candidates inside the corridor with forward progress
// past the minimum increment and short of the destination.
func (p *Planner) corridorNodes(req Request) []corridorNode {
	direct := geo.DistanceNM(req.Departure.Point, req.Destination.Point)
	out := make([]corridorNode, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if c.Airport.Ident == req.Departure.Ident || c.Airport.Ident == req.Destination.Ident {
			continue
		}
		pt := c.Airport.Point
		if !geo.InCorridor(pt, req.Departure.Point, req.Destination.Point, p.cfg.CorridorWidthNM, p.cfg.MinProgressNM) {
			continue
		}
		along := geo.AlongTrackDistanceNM(pt, req.Departure.Point, req.Destination.Point)
		if along > direct-p.cfg.MinProgressNM {
			continue // past (or effectively at) the destination
		}
		out = append(out, corridorNode{ap: c.Airport, des: c.Desirability, progressNM: along})
	}
	return out
}

// stepCost implements the cost model for selecting a candidate as the next
// stop: leg distance plus fixed ground time, discounted by desirability,
// penalized (not pruned) for violated aircraft constraints. Never negative.
func stepCost(legNM float64, node corridorNode, acft model.AircraftRequirements) float64 {
	cost := legNM + groundTimePenaltyNM - desirabilityBonusNM*(node.des/100)
	switch acft.FuelType {
	case "avgas":
		if !node.ap.HasAvgas {
			cost += fuelPenaltyNM
		}
	case "jet_a":
		if !node.ap.HasJetA {
			cost += fuelPenaltyNM
		}
	}
	if acft.MinRunwayM > 0 && node.ap.LongestRunwayM < acft.MinRunwayM {
		cost += runwayPenaltyNM
	}
	if cost < 0 {
		cost = 0
	}
	return cost
}

const legEps = 1e-6

// search runs bounded best-first over (current airport, stops used) states.
// The heuristic is the great-circle distance to the destination: an
// admissible lower bound on remaining cost, so cheaper paths surface first.
func (p *Planner) search(req Request, nodes []corridorNode, maxStops int, direct float64) ([]int, int, error) {
	seq := 0
	pq := &stateQueue{}
	heap.Init(pq)
	start := &searchState{candIdx: depIdx, g: 0, f: direct, seq: seq}
	heap.Push(pq, start)

	type stateKey struct{ cand, stops int }
	best := map[stateKey]float64{{depIdx, 0}: 0}

	point := func(idx int) model.NavPoint {
		switch idx {
		case depIdx:
			return req.Departure.Point
		case destIdx:
			return req.Destination.Point
		}
		return nodes[idx].ap.Point
	}

	expanded := 0
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*searchState)
		if cur.candIdx == destIdx {
			return pathOf(cur), expanded, nil
		}
		expanded++
		if expanded > p.cfg.NodeBudget {
			return nil, expanded, ErrSearchExhausted
		}
		curPt := point(cur.candIdx)

		push := func(idx int, legCost, legNM, progress float64) {
			stops := cur.stops
			if idx >= 0 {
				stops++
			}
			g := cur.g + legCost
			key := stateKey{idx, stops}
			if prev, ok := best[key]; ok && prev <= g {
				return
			}
			best[key] = g
			seq++
			h := 0.0
			if idx != destIdx {
				h = geo.DistanceNM(point(idx), req.Destination.Point)
			}
			heap.Push(pq, &searchState{
				candIdx: idx, stops: stops, g: g, f: g + h,
				seq: seq, progress: progress, parent: cur,
			})
		}

		// final leg to the destination
		legd := geo.DistanceNM(curPt, req.Destination.Point)
		if req.MaxLegNM <= 0 || legd <= req.MaxLegNM+legEps {
			push(destIdx, legd, legd, direct)
		}

		if cur.stops >= maxStops {
			continue
		}
		for j := range nodes {
			if nodes[j].progressNM < cur.progress+p.cfg.MinProgressNM {
				continue // would not advance along the route
			}
			legd := geo.DistanceNM(curPt, nodes[j].ap.Point)
			if req.MaxLegNM > 0 && legd > req.MaxLegNM+legEps {
				continue
			}
			push(j, stepCost(legd, nodes[j], req.Aircraft), legd, nodes[j].progressNM)
		}
	}
	return nil, expanded, ErrConstraintInfeasible
}

// pathOf returns the candidate indices of the intermediate stops, in order.
func pathOf(terminal *searchState) []int {
	var rev []int
	for st := terminal; st != nil; st = st.parent {
		if st.candIdx >= 0 {
			rev = append(rev, st.candIdx)
		}
	}
	out := make([]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// assemble builds the final route from the chosen stop sequence with real
// great-circle distances, not search costs.
func (p *Planner) assemble(req Request, stops []int, nodes []corridorNode) model.PlannedRoute {
	route := model.PlannedRoute{ID: uuid.New().String()}
	prev := req.Departure
	var desSum float64
	for _, idx := range stops {
		n := nodes[idx]
		d := geo.DistanceNM(prev.Point, n.ap.Point)
		route.Legs = append(route.Legs, model.RouteLeg{
			From: prev.Ident, To: n.ap.Ident, DistanceNM: d, ToAirport: n.ap,
		})
		route.Stops = append(route.Stops, model.StopDetail{Airport: n.ap, Desirability: n.des})
		route.TotalDistanceNM += d
		desSum += n.des
		prev = n.ap
	}
	final := geo.DistanceNM(prev.Point, req.Destination.Point)
	route.Legs = append(route.Legs, model.RouteLeg{
		From: prev.Ident, To: req.Destination.Ident, DistanceNM: final, ToAirport: req.Destination,
	})
	route.TotalDistanceNM += final
	if len(route.Stops) > 0 {
		route.Desirability = desSum / float64(len(route.Stops))
	}
	if req.Aircraft.CruiseSpeedKt > 0 {
		route.EstTimeHours = route.TotalDistanceNM / req.Aircraft.CruiseSpeedKt
	}
	return route
}

// FirstStopCandidates enumerates corridor candidates within maxDistanceNM of
// the departure and ranks them by point-search buckets plus desirability.
// It suggests choices for an interactive caller; no plan is committed.
func (p *Planner) FirstStopCandidates(departure, destination model.Airport, maxDistanceNM float64, cands []Candidate, max int) []model.ScoredCandidate {
	out := []model.ScoredCandidate{}
	for _, c := range cands {
		if c.Airport.Ident == departure.Ident || c.Airport.Ident == destination.Ident {
			continue
		}
		if !geo.InCorridor(c.Airport.Point, departure.Point, destination.Point, p.cfg.CorridorWidthNM, p.cfg.MinProgressNM) {
			continue
		}
		d := geo.DistanceNM(departure.Point, c.Airport.Point)
		if maxDistanceNM > 0 && d > maxDistanceNM {
			continue
		}
		out = append(out, model.ScoredCandidate{
			Airport:    c.Airport,
			Bucket:     rank.PointBucket(d),
			Score:      100 - c.Desirability,
			DistanceNM: d,
			Meta:       map[string]any{"desirability": c.Desirability},
		})
	}
	sortCandidates(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// sortCandidates applies the engine-wide ordering: bucket, then tiebreak
// score, then distance, then ident for full determinism.
func sortCandidates(cands []model.ScoredCandidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && candidateLess(cands[j], cands[j-1]); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

func candidateLess(a, b model.ScoredCandidate) bool {
	if a.Bucket != b.Bucket {
		return a.Bucket < b.Bucket
	}
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.DistanceNM != b.DistanceNM {
		return a.DistanceNM < b.DistanceNM
	}
	return a.Airport.Ident < b.Airport.Ident
}
