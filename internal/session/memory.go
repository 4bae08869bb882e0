package session

import (
	"context"
	"sync"
	"time"

	"avroute/internal/model"
)

// Memory is the in-process Store used when no Redis is configured. Expiry is
// lazy: expired sessions are dropped on access, plus eagerly by the janitor.
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*model.RouteSession
	now      func() time.Time // swappable for tests
}

// NewMemory returns an empty in-memory store. ttl <= 0 uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, sessions: map[string]*model.RouteSession{}, now: time.Now}
}

func (m *Memory) Create(_ context.Context, s *model.RouteSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

// live returns the stored session if present and unexpired, deleting it when
// expired. Caller holds the lock.
func (m *Memory) live(id string, now time.Time) (*model.RouteSession, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

func (m *Memory) Get(_ context.Context, id string) (*model.RouteSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s, ok := m.live(id, now)
	if !ok {
		return nil, ErrNotFound
	}
	s.UpdatedAt = now // reading keeps the session alive
	cp := *s
	cp.ConfirmedStops = append([]string(nil), s.ConfirmedStops...)
	return &cp, nil
}

func (m *Memory) ConfirmStop(_ context.Context, id, ident string) (*model.RouteSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s, ok := m.live(id, now)
	if !ok {
		return nil, ErrNotFound
	}
	if err := confirm(s, ident, now); err != nil {
		return nil, err
	}
	s.UpdatedAt = now
	cp := *s
	cp.ConfirmedStops = append([]string(nil), s.ConfirmedStops...)
	return &cp, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped, nil
}

// Count reports sessions that are still within their TTL. Expired-but-unswept
// entries do not count, so the active-sessions gauge never inflates between
// janitor sweeps.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for _, s := range m.sessions {
		if now.Sub(s.UpdatedAt) <= m.ttl {
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions, expired or not. Used by the
// readiness probe and tests.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
