// Package enrich supplies optional airport data that lives outside the core
// catalog: hospitality counts, pricing, and per-persona desirability scores.
// Providers satisfy both the filter and ranking collaborator interfaces.
package enrich

import (
	"context"
	"strings"

	"avroute/internal/model"
)

// Provider is the full enrichment surface. The "false, nil" return means
// "no data for this airport"; callers decide whether that fails open or
// closed.
type Provider interface {
	Hospitality(ctx context.Context, ident string) (model.Hospitality, bool, error)
	Pricing(ctx context.Context, ident string) (model.Pricing, bool, error)
	PersonaScore(ctx context.Context, ident, personaID string) (float64, bool, error)
}

// Static is a fixed in-memory Provider for dev mode and tests.
type Static struct {
	Hosp   map[string]model.Hospitality
	Price  map[string]model.Pricing
	Scores map[string]map[string]float64 // personaID -> ident -> score
}

// NewStatic returns an empty provider; populate the maps directly.
func NewStatic() *Static {
	return &Static{
		Hosp:   map[string]model.Hospitality{},
		Price:  map[string]model.Pricing{},
		Scores: map[string]map[string]float64{},
	}
}

func (s *Static) Hospitality(_ context.Context, ident string) (model.Hospitality, bool, error) {
	h, ok := s.Hosp[strings.ToUpper(ident)]
	return h, ok, nil
}

func (s *Static) Pricing(_ context.Context, ident string) (model.Pricing, bool, error) {
	p, ok := s.Price[strings.ToUpper(ident)]
	return p, ok, nil
}

func (s *Static) PersonaScore(_ context.Context, ident, personaID string) (float64, bool, error) {
	m, ok := s.Scores[personaID]
	if !ok {
		return 0, false, nil
	}
	v, ok := m[strings.ToUpper(ident)]
	return v, ok, nil
}
