package airport

import (
	"context"
	"errors"
	"testing"

	"avroute/internal/model"
)

func TestByIdentCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Seed())

	ap, err := m.ByIdent(ctx, "lfat")
	if err != nil {
		t.Fatal(err)
	}
	if ap.Ident != "LFAT" || !ap.PointOfEntry {
		t.Fatalf("unexpected airport: %+v", ap)
	}

	if _, err := m.ByIdent(ctx, "ZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAllIsSortedByIdent(t *testing.T) {
	m := NewMemory(Seed())
	all, err := m.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(Seed()) {
		t.Fatalf("got %d airports, want %d", len(all), len(Seed()))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Ident < all[i-1].Ident {
			t.Fatalf("catalog not sorted: %s after %s", all[i].Ident, all[i-1].Ident)
		}
	}
}

func TestNearPoint(t *testing.T) {
	m := NewMemory(Seed())
	// around Le Touquet: a 100 nm radius reaches Rouen but not Cannes
	lfat := model.NavPoint{Lat: 50.5174, Lon: 1.6206}
	near, err := m.NearPoint(context.Background(), lfat, 100)
	if err != nil {
		t.Fatal(err)
	}
	idents := map[string]bool{}
	for _, ap := range near {
		idents[ap.Ident] = true
	}
	if !idents["LFAT"] || !idents["LFOP"] {
		t.Fatalf("missing expected airports in %v", idents)
	}
	if idents["LFMD"] {
		t.Fatal("Cannes is not within 100 nm of Le Touquet")
	}
}

func TestNearRouteCorridor(t *testing.T) {
	m := NewMemory(Seed())
	start := model.NavPoint{Lat: 51.3481, Lon: -0.5589} // EGTF
	end := model.NavPoint{Lat: 43.5420, Lon: 6.9535}    // LFMD

	near, err := m.NearRoute(context.Background(), start, end, 50)
	if err != nil {
		t.Fatal(err)
	}
	idents := map[string]bool{}
	for _, ap := range near {
		idents[ap.Ident] = true
	}
	for _, want := range []string{"LFAT", "LFOP", "LFPN", "LFLA", "LFGF", "LFLY"} {
		if !idents[want] {
			t.Fatalf("%s should be inside the 50 nm corridor, got %v", want, idents)
		}
	}
	for _, no := range []string{"EGJJ", "LFBD"} {
		if idents[no] {
			t.Fatalf("%s should be outside the corridor", no)
		}
	}
}
