// Package filter applies named boolean predicates to airports. Filters are
// conjunctive: an airport survives only when every requested filter passes.
package filter

import (
	"context"
	"log"
	"strings"

	"avroute/internal/model"
)

// Enrichment provides optional amenity/pricing data for fail-closed filters.
// A false second return means the provider has no data for the airport.
type Enrichment interface {
	Hospitality(ctx context.Context, ident string) (model.Hospitality, bool, error)
	Pricing(ctx context.Context, ident string) (model.Pricing, bool, error)
}

// Context carries cross-cutting collaborators into filter evaluation.
type Context struct {
	Ctx    context.Context
	Enrich Enrichment // nil when no enrichment service is configured
}

// Func is a single named predicate. A nil value means "not filtering" and
// must pass every airport regardless of data availability.
type Func func(ap model.Airport, value any, fctx Context) bool

// Registry holds the available filters. It is constructed once at process
// start and passed by reference; there is no package-level mutable state.
type Registry struct {
	filters map[string]Func
}

// NewRegistry returns a registry with all built-in filters registered.
func NewRegistry() *Registry {
	r := &Registry{filters: map[string]Func{}}
	r.Register("country", filterCountry)
	r.Register("min_runway_m", filterMinRunway)
	r.Register("max_runway_m", filterMaxRunway)
	r.Register("avgas", filterAvgas)
	r.Register("jet_a", filterJetA)
	r.Register("has_procedures", filterProcedures)
	r.Register("point_of_entry", filterPointOfEntry)
	r.Register("hotel", filterHotel)
	r.Register("restaurant", filterRestaurant)
	r.Register("max_landing_fee_eur", filterMaxLandingFee)
	return r
}

// Register adds or replaces a filter by name.
func (r *Registry) Register(name string, fn Func) { r.filters[name] = fn }

// Names returns the registered filter names, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.filters))
	for n := range r.filters {
		out = append(out, n)
	}
	return out
}

// Apply evaluates spec against each airport, short-circuiting on the first
// failing filter. Unknown filter names are logged and skipped. The relative
// order of the input is preserved; an empty spec returns the input as-is.
func (r *Registry) Apply(airports []model.Airport, spec map[string]any, fctx Context) []model.Airport {
	if len(spec) == 0 {
		return airports
	}
	if fctx.Ctx == nil {
		fctx.Ctx = context.Background()
	}
	out := make([]model.Airport, 0, len(airports))
	for _, ap := range airports {
		if r.passes(ap, spec, fctx) {
			out = append(out, ap)
		}
	}
	return out
}

func (r *Registry) passes(ap model.Airport, spec map[string]any, fctx Context) bool {
	for name, value := range spec {
		fn, ok := r.filters[name]
		if !ok {
			log.Printf("filter: unknown filter %q skipped", name)
			continue
		}
		if value == nil {
			continue
		}
		if !fn(ap, value, fctx) {
			return false
		}
	}
	return true
}

// --- fail-open filters over local airport fields ---

func filterCountry(ap model.Airport, value any, _ Context) bool {
	want, ok := asStrings(value)
	if !ok || len(want) == 0 {
		return true
	}
	for _, c := range want {
		if strings.EqualFold(ap.Country, c) {
			return true
		}
	}
	return false
}

// Runway bound filters are fail-closed on missing data: an unknown runway
// length cannot satisfy a bound.
func filterMinRunway(ap model.Airport, value any, _ Context) bool {
	min, ok := asFloat(value)
	if !ok {
		return true
	}
	if ap.LongestRunwayM == 0 {
		return false
	}
	return float64(ap.LongestRunwayM) >= min
}

func filterMaxRunway(ap model.Airport, value any, _ Context) bool {
	max, ok := asFloat(value)
	if !ok {
		return true
	}
	if ap.LongestRunwayM == 0 {
		return false
	}
	return float64(ap.LongestRunwayM) <= max
}

// Boolean flag filters require the flag only when the requested value is
// true; false is treated the same as absent.
func filterAvgas(ap model.Airport, value any, _ Context) bool {
	return !asBool(value) || ap.HasAvgas
}

func filterJetA(ap model.Airport, value any, _ Context) bool {
	return !asBool(value) || ap.HasJetA
}

func filterProcedures(ap model.Airport, value any, _ Context) bool {
	return !asBool(value) || ap.HasProcedures
}

func filterPointOfEntry(ap model.Airport, value any, _ Context) bool {
	return !asBool(value) || ap.PointOfEntry
}

// --- fail-closed filters backed by the enrichment provider ---
//
// These exclude a candidate whenever the provider is unavailable or has no
// data: silently passing everyone would be misleading for amenity filters.

func filterHotel(ap model.Airport, value any, fctx Context) bool {
	if !asBool(value) {
		return true
	}
	if fctx.Enrich == nil {
		return false
	}
	h, ok, err := fctx.Enrich.Hospitality(fctx.Ctx, ap.Ident)
	return err == nil && ok && h.Hotels > 0
}

func filterRestaurant(ap model.Airport, value any, fctx Context) bool {
	if !asBool(value) {
		return true
	}
	if fctx.Enrich == nil {
		return false
	}
	h, ok, err := fctx.Enrich.Hospitality(fctx.Ctx, ap.Ident)
	return err == nil && ok && h.Restaurants > 0
}

func filterMaxLandingFee(ap model.Airport, value any, fctx Context) bool {
	max, ok := asFloat(value)
	if !ok {
		return true
	}
	if fctx.Enrich == nil {
		return false
	}
	p, found, err := fctx.Enrich.Pricing(fctx.Ctx, ap.Ident)
	return err == nil && found && p.LandingFeeEUR <= max
}

// --- value coercion (filter specs arrive as decoded JSON) ---

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func asStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
