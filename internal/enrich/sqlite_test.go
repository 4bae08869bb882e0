package enrich

import (
	"context"
	"path/filepath"
	"testing"

	"avroute/internal/model"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "enrich.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteHospitalityRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	if _, ok, err := s.Hospitality(ctx, "LFAT"); err != nil || ok {
		t.Fatalf("empty db: ok=%v err=%v, want no data", ok, err)
	}

	if err := s.SetHospitality(ctx, "lfat", model.Hospitality{Hotels: 3, Restaurants: 5}); err != nil {
		t.Fatal(err)
	}
	h, ok, err := s.Hospitality(ctx, "LFAT")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if h.Hotels != 3 || h.Restaurants != 5 {
		t.Fatalf("got %+v", h)
	}

	// upsert replaces
	if err := s.SetHospitality(ctx, "LFAT", model.Hospitality{Hotels: 1}); err != nil {
		t.Fatal(err)
	}
	h, _, _ = s.Hospitality(ctx, "LFAT")
	if h.Hotels != 1 || h.Restaurants != 0 {
		t.Fatalf("upsert did not replace: %+v", h)
	}
}

func TestSQLitePricing(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	if err := s.SetPricing(ctx, "LFMD", model.Pricing{LandingFeeEUR: 32.5, AvgasPerLitreEUR: 2.8}); err != nil {
		t.Fatal(err)
	}
	p, ok, err := s.Pricing(ctx, "lfmd")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if p.LandingFeeEUR != 32.5 {
		t.Fatalf("got %+v", p)
	}
}

func TestSQLitePersonaScores(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	if _, ok, err := s.PersonaScore(ctx, "LFAT", "vfr_weekend"); err != nil || ok {
		t.Fatalf("empty db: ok=%v err=%v", ok, err)
	}
	if err := s.SetPersonaScore(ctx, "vfr_weekend", "LFAT", 85); err != nil {
		t.Fatal(err)
	}
	sc, ok, err := s.PersonaScore(ctx, "LFAT", "vfr_weekend")
	if err != nil || !ok || sc != 85 {
		t.Fatalf("got %v ok=%v err=%v", sc, ok, err)
	}
	// score is scoped per persona
	if _, ok, _ := s.PersonaScore(ctx, "LFAT", "ifr_touring"); ok {
		t.Fatal("score leaked across personas")
	}
}

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()
	s.Hosp["LFAT"] = model.Hospitality{Hotels: 2}
	s.Scores["vfr_weekend"] = map[string]float64{"LFAT": 90}

	if h, ok, _ := s.Hospitality(ctx, "lfat"); !ok || h.Hotels != 2 {
		t.Fatalf("got %+v ok=%v", h, ok)
	}
	if sc, ok, _ := s.PersonaScore(ctx, "lfat", "vfr_weekend"); !ok || sc != 90 {
		t.Fatalf("got %v ok=%v", sc, ok)
	}
	if _, ok, _ := s.Pricing(ctx, "LFAT"); ok {
		t.Fatal("unexpected pricing data")
	}
}
