// Package rank orders airport candidates into priority buckets. Bucket
// assignment strictly dominates any finer score: a candidate in a worse
// bucket never precedes one in a better bucket.
package rank

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"avroute/internal/model"
)

// ErrUnknownStrategy is returned for strategy names not in the registry.
var ErrUnknownStrategy = errors.New("unknown ranking strategy")

// Bias selects where along a route the ranking should prefer candidates.
type Bias string

const (
	BiasNearOrigin      Bias = "near_origin"
	BiasHalfway         Bias = "halfway"
	BiasNearDestination Bias = "near_destination"
)

// ScoreProvider supplies persona desirability scores (0..100). A false
// second return means "no data"; the engine then falls back to a
// deterministic basic score.
type ScoreProvider interface {
	PersonaScore(ctx context.Context, ident, personaID string) (float64, bool, error)
}

// Context carries the distance signals and persona collaborators for one
// ranking call. Exactly one of DistanceFromNM / ProgressNM is normally set;
// with neither, candidates are bucketed by score availability.
type Context struct {
	Ctx       context.Context
	PersonaID string
	Scores    ScoreProvider // nil when no provider is configured

	// Point search: per-airport distance from a single location.
	DistanceFromNM map[string]float64

	// Route search: per-airport progress along the route.
	ProgressNM    map[string]float64
	RouteLengthNM float64
	Bias          Bias
}

// Strategy scores and orders a candidate set.
type Strategy interface {
	Name() string
	Score(airports []model.Airport, rctx Context) []model.ScoredCandidate
}

// Registry holds the available strategies; constructed once at process
// start, no hidden global state.
type Registry struct {
	strategies map[string]Strategy
	def        string
}

// NewRegistry returns a registry with the persona-optimized default
// strategy registered.
func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}, def: "persona"}
	r.Register(personaStrategy{})
	return r
}

// Register adds a strategy by its name.
func (r *Registry) Register(s Strategy) { r.strategies[s.Name()] = s }

// Rank applies the named strategy (empty name = default) and returns the
// top max candidates. Truncation happens after the full sort.
func (r *Registry) Rank(airports []model.Airport, strategyName string, rctx Context, max int) ([]model.ScoredCandidate, error) {
	if strategyName == "" {
		strategyName = r.def
	}
	s, ok := r.strategies[strategyName]
	if !ok {
		return nil, fmt.Errorf("rank: %w: %q", ErrUnknownStrategy, strategyName)
	}
	if rctx.Ctx == nil {
		rctx.Ctx = context.Background()
	}
	out := s.Score(airports, rctx)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// Desirability resolves the persona score for an airport, falling back to
// the deterministic basic score when the provider is absent or has no data.
func Desirability(rctx Context, ap model.Airport) float64 {
	if rctx.Scores != nil && rctx.PersonaID != "" {
		if sc, ok, err := rctx.Scores.PersonaScore(rctx.Ctx, ap.Ident, rctx.PersonaID); err == nil && ok {
			return sc
		}
	}
	return FallbackScore(ap)
}

// FallbackScore is the deterministic desirability used when no persona data
// is available: procedures and border crossing are the strongest signals a
// stop is practical for touring traffic.
func FallbackScore(ap model.Airport) float64 {
	switch {
	case ap.HasProcedures && ap.PointOfEntry:
		return 80
	case ap.HasProcedures:
		return 60
	case ap.PointOfEntry:
		return 50
	default:
		return 30
	}
}

var pointThresholdsNM = []float64{15, 30, 50, 100}
var routeFractions = []float64{0.10, 0.20, 0.35}

// PointBucket returns the priority tier for a distance from a single
// location: the first threshold the distance falls under, else the overflow
// bucket. Lower bucket = closer = better.
func PointBucket(distanceNM float64) int {
	return firstUnder(distanceNM, pointThresholdsNM)
}

// RouteBucket returns the priority tier for a deviation from the target
// position along a route, with thresholds proportional to route length.
func RouteBucket(deviationNM, routeLengthNM float64) int {
	for i, f := range routeFractions {
		if deviationNM < f*routeLengthNM {
			return i
		}
	}
	return len(routeFractions)
}

func firstUnder(v float64, thresholds []float64) int {
	for i, t := range thresholds {
		if v < t {
			return i
		}
	}
	return len(thresholds)
}

// personaStrategy is the default bucketing strategy. It dispatches on the
// distance signal present in the context.
type personaStrategy struct{}

func (personaStrategy) Name() string { return "persona" }

func (personaStrategy) Score(airports []model.Airport, rctx Context) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, 0, len(airports))
	for _, ap := range airports {
		des := Desirability(rctx, ap)
		c := model.ScoredCandidate{
			Airport: ap,
			// tiebreak score within a bucket: lower is better, so invert
			// the 0..100 desirability
			Score: 100 - des,
			Meta:  map[string]any{"desirability": des},
		}
		switch {
		case rctx.DistanceFromNM != nil:
			d := rctx.DistanceFromNM[ap.Ident]
			c.Bucket = PointBucket(d)
			c.DistanceNM = d
		case rctx.ProgressNM != nil && rctx.RouteLengthNM > 0:
			dev := deviation(rctx.ProgressNM[ap.Ident], rctx.RouteLengthNM, rctx.Bias)
			c.Bucket = RouteBucket(dev, rctx.RouteLengthNM)
			c.DistanceNM = dev
		default:
			// no distance signal: prefer airports we have persona data for
			if hasPersonaScore(rctx, ap) {
				c.Bucket = 0
			} else {
				c.Bucket = 1
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		if out[i].DistanceNM != out[j].DistanceNM {
			return out[i].DistanceNM < out[j].DistanceNM
		}
		return out[i].Airport.Ident < out[j].Airport.Ident
	})
	return out
}

func deviation(progressNM, routeLengthNM float64, bias Bias) float64 {
	target := routeLengthNM / 2
	switch bias {
	case BiasNearOrigin:
		target = 0
	case BiasNearDestination:
		target = routeLengthNM
	}
	dev := progressNM - target
	if dev < 0 {
		dev = -dev
	}
	return dev
}

func hasPersonaScore(rctx Context, ap model.Airport) bool {
	if rctx.Scores == nil || rctx.PersonaID == "" {
		return false
	}
	_, ok, err := rctx.Scores.PersonaScore(rctx.Ctx, ap.Ident, rctx.PersonaID)
	return err == nil && ok
}
