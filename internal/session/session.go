// Package session persists interactive route-building sessions. A session
// tracks confirmed stops between requests and expires after a fixed idle TTL.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"avroute/internal/model"
)

// DefaultTTL is the idle lifetime of a session. Any read or write of a live
// session resets the clock.
const DefaultTTL = 1800 * time.Second

var (
	ErrNotFound        = errors.New("session not found")
	ErrSessionComplete = errors.New("session already has all target stops")
)

// Store persists sessions. Implementations must treat expiry as equivalent
// to absence: an expired session is ErrNotFound, never stale data.
type Store interface {
	Create(ctx context.Context, s *model.RouteSession) error
	Get(ctx context.Context, id string) (*model.RouteSession, error)
	// ConfirmStop appends ident to the session's confirmed stops and returns
	// the updated session. Confirming an already-present ident is a no-op,
	// not an error. Confirming beyond the target count fails with
	// ErrSessionComplete.
	ConfirmStop(ctx context.Context, id, ident string) (*model.RouteSession, error)
	Delete(ctx context.Context, id string) error
	// CleanupExpired removes expired sessions eagerly and reports how many
	// were dropped. Lazy expiry on Get makes this an optimization only.
	CleanupExpired(ctx context.Context) (int, error)
	// Count reports the number of live sessions, for gauges and diagnostics.
	Count(ctx context.Context) (int, error)
}

// New builds an unsaved session with a fresh ID and timestamps.
func New(departure, destination string, targetStops int) *model.RouteSession {
	now := time.Now().UTC()
	return &model.RouteSession{
		ID:          uuid.New().String(),
		Departure:   departure,
		Destination: destination,
		TargetStops: targetStops,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// confirm applies the shared ConfirmStop semantics to a live session copy.
// Both backends funnel through this so idempotency and the completion check
// cannot drift apart.
func confirm(s *model.RouteSession, ident string, now time.Time) error {
	if s.HasStop(ident) {
		return nil
	}
	if s.IsComplete() {
		return ErrSessionComplete
	}
	s.ConfirmedStops = append(s.ConfirmedStops, ident)
	s.UpdatedAt = now
	return nil
}
