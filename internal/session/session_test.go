package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	s := New("EGTF", "LFMD", 2)
	if err := m.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Departure != "EGTF" || got.Destination != "LFMD" || got.TargetStops != 2 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}
	if err := m.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryConfirmStopSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	s := New("EGTF", "LFMD", 2)
	if err := m.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, err := m.ConfirmStop(ctx, s.ID, "LFAT")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ConfirmedStops) != 1 {
		t.Fatalf("stops = %v", got.ConfirmedStops)
	}

	// confirming the same stop again is idempotent
	got, err = m.ConfirmStop(ctx, s.ID, "LFAT")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ConfirmedStops) != 1 {
		t.Fatalf("idempotent confirm duplicated stop: %v", got.ConfirmedStops)
	}

	got, err = m.ConfirmStop(ctx, s.ID, "LFLY")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsComplete() {
		t.Fatal("session should be complete after target stops confirmed")
	}

	// a third distinct stop exceeds the target
	if _, err := m.ConfirmStop(ctx, s.ID, "LFMV"); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("got %v, want ErrSessionComplete", err)
	}
	// re-confirming an existing stop on a complete session stays a no-op
	if _, err := m.ConfirmStop(ctx, s.ID, "LFAT"); err != nil {
		t.Fatalf("idempotent confirm on complete session failed: %v", err)
	}
}

func TestMemoryLazyExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(30 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	s := New("EGTF", "LFMD", 1)
	s.UpdatedAt = now
	if err := m.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	now = now.Add(29 * time.Minute)
	if _, err := m.Get(ctx, s.ID); err != nil {
		t.Fatalf("session expired early: %v", err)
	}

	// the read above refreshed the clock; jump past the full TTL from there
	now = now.Add(31 * time.Minute)
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after TTL", err)
	}
	if m.Len() != 0 {
		t.Fatal("expired session not dropped on access")
	}
}

func TestMemoryCleanupExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		s := New("EGTF", "LFMD", 1)
		s.UpdatedAt = now
		if err := m.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	fresh := New("EGTF", "LFMD", 1)
	now = now.Add(15 * time.Minute)
	fresh.UpdatedAt = now
	if err := m.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	n, err := m.CleanupExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || m.Len() != 1 {
		t.Fatalf("dropped %d (len %d), want 3 dropped with 1 left", n, m.Len())
	}
}

func TestMemoryCountExcludesExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	stale := New("EGTF", "LFMD", 1)
	stale.UpdatedAt = now
	if err := m.Create(ctx, stale); err != nil {
		t.Fatal(err)
	}
	now = now.Add(15 * time.Minute)
	fresh := New("EGTF", "LFMD", 1)
	fresh.UpdatedAt = now
	if err := m.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	// the stale session is still stored but past TTL; it must not count
	n, err := m.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d (len %d), want 1 live session", n, m.Len())
	}
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, 30*time.Minute), mr
}

func TestRedisLifecycle(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	s := New("EGTF", "LFMD", 2)
	if err := r.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != s.ID || got.TargetStops != 2 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	got, err = r.ConfirmStop(ctx, s.ID, "LFAT")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ConfirmedStops) != 1 || got.ConfirmedStops[0] != "LFAT" {
		t.Fatalf("stops = %v", got.ConfirmedStops)
	}

	if err := r.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRedisTTLExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	s := New("EGTF", "LFMD", 1)
	if err := r.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(31 * time.Minute)
	if _, err := r.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after TTL", err)
	}
}

func TestRedisCountTracksTTLEviction(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	for i := 0; i < 2; i++ {
		if err := r.Create(ctx, New("EGTF", "LFMD", 1)); err != nil {
			t.Fatal(err)
		}
	}
	n, err := r.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}

	// Redis evicts on key TTL without telling us; Count must see it
	mr.FastForward(31 * time.Minute)
	n, err = r.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("count = %d after TTL, want 0", n)
	}
}

func TestJanitorSweeps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Millisecond)
	s := New("EGTF", "LFMD", 1)
	if err := m.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(m, 5*time.Millisecond)
	j.Start()
	defer j.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("janitor never swept the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJanitorReportsSweeps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Millisecond)
	if err := m.Create(ctx, New("EGTF", "LFMD", 1)); err != nil {
		t.Fatal(err)
	}

	swept := make(chan int, 16)
	j := NewJanitor(m, 5*time.Millisecond)
	j.OnSweep(func(dropped int) {
		select {
		case swept <- dropped:
		default:
		}
	})
	j.Start()
	defer j.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-swept:
			if n > 0 {
				return
			}
		case <-deadline:
			t.Fatal("sweep callback never reported the dropped session")
		}
	}
}
