package airport

import (
	"context"
	"sort"
	"strings"
	"sync"

	"avroute/internal/geo"
	"avroute/internal/model"
)

// Memory is the embedded catalog backend used for dev and tests, and the
// default when DATABASE_URL is unset.
type Memory struct {
	mu      sync.RWMutex
	byIdent map[string]model.Airport
	ordered []string
}

// NewMemory builds a catalog from the given airports. Later duplicates of an
// ident replace earlier ones.
func NewMemory(airports []model.Airport) *Memory {
	m := &Memory{byIdent: map[string]model.Airport{}}
	for _, ap := range airports {
		id := strings.ToUpper(ap.Ident)
		if _, exists := m.byIdent[id]; !exists {
			m.ordered = append(m.ordered, id)
		}
		ap.Ident = id
		m.byIdent[id] = ap
	}
	sort.Strings(m.ordered)
	return m
}

func (m *Memory) ByIdent(_ context.Context, ident string) (model.Airport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ap, ok := m.byIdent[strings.ToUpper(ident)]
	if !ok {
		return model.Airport{}, ErrNotFound
	}
	return ap, nil
}

func (m *Memory) All(_ context.Context) ([]model.Airport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Airport, 0, len(m.ordered))
	for _, id := range m.ordered {
		out = append(out, m.byIdent[id])
	}
	return out, nil
}

func (m *Memory) NearPoint(_ context.Context, p model.NavPoint, radiusNM float64) ([]model.Airport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Airport{}
	for _, id := range m.ordered {
		ap := m.byIdent[id]
		if geo.DistanceNM(p, ap.Point) <= radiusNM {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (m *Memory) NearRoute(_ context.Context, start, end model.NavPoint, widthNM float64) ([]model.Airport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Airport{}
	for _, id := range m.ordered {
		ap := m.byIdent[id]
		if geo.CrossTrackDistanceNM(ap.Point, start, end) <= widthNM {
			out = append(out, ap)
		}
	}
	return out, nil
}
