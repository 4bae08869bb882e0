package enrich

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"avroute/internal/model"
)

// SQLite is the file-backed Provider, enabled with ENRICH_DB. Enrichment
// data changes rarely and ships as a single file alongside the binary, which
// is why this lives in SQLite rather than the main database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the enrichment database and makes sure the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("enrich: open %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enrich: pragma: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS hospitality (
  ident       TEXT PRIMARY KEY,
  hotels      INTEGER NOT NULL DEFAULT 0,
  restaurants INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS pricing (
  ident                TEXT PRIMARY KEY,
  landing_fee_eur      REAL NOT NULL DEFAULT 0,
  avgas_per_litre_eur  REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS persona_scores (
  persona_id TEXT NOT NULL,
  ident      TEXT NOT NULL,
  score      REAL NOT NULL,
  PRIMARY KEY (persona_id, ident)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("enrich: ensure schema: %w", err)
	}
	return nil
}

func (s *SQLite) Hospitality(ctx context.Context, ident string) (model.Hospitality, bool, error) {
	var h model.Hospitality
	err := s.db.QueryRowContext(ctx,
		`SELECT hotels, restaurants FROM hospitality WHERE ident = ?`,
		strings.ToUpper(ident)).Scan(&h.Hotels, &h.Restaurants)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hospitality{}, false, nil
	}
	if err != nil {
		return model.Hospitality{}, false, fmt.Errorf("enrich: hospitality %s: %w", ident, err)
	}
	return h, true, nil
}

func (s *SQLite) Pricing(ctx context.Context, ident string) (model.Pricing, bool, error) {
	var p model.Pricing
	err := s.db.QueryRowContext(ctx,
		`SELECT landing_fee_eur, avgas_per_litre_eur FROM pricing WHERE ident = ?`,
		strings.ToUpper(ident)).Scan(&p.LandingFeeEUR, &p.AvgasPerLitreEUR)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Pricing{}, false, nil
	}
	if err != nil {
		return model.Pricing{}, false, fmt.Errorf("enrich: pricing %s: %w", ident, err)
	}
	return p, true, nil
}

func (s *SQLite) PersonaScore(ctx context.Context, ident, personaID string) (float64, bool, error) {
	var score float64
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM persona_scores WHERE persona_id = ? AND ident = ?`,
		personaID, strings.ToUpper(ident)).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("enrich: persona score %s/%s: %w", personaID, ident, err)
	}
	return score, true, nil
}

// SetHospitality upserts hospitality counts. Used by data loaders and tests.
func (s *SQLite) SetHospitality(ctx context.Context, ident string, h model.Hospitality) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO hospitality (ident, hotels, restaurants) VALUES (?, ?, ?)
ON CONFLICT(ident) DO UPDATE SET hotels=excluded.hotels, restaurants=excluded.restaurants`,
		strings.ToUpper(ident), h.Hotels, h.Restaurants)
	if err != nil {
		return fmt.Errorf("enrich: set hospitality %s: %w", ident, err)
	}
	return nil
}

// SetPricing upserts pricing data.
func (s *SQLite) SetPricing(ctx context.Context, ident string, p model.Pricing) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pricing (ident, landing_fee_eur, avgas_per_litre_eur) VALUES (?, ?, ?)
ON CONFLICT(ident) DO UPDATE SET landing_fee_eur=excluded.landing_fee_eur, avgas_per_litre_eur=excluded.avgas_per_litre_eur`,
		strings.ToUpper(ident), p.LandingFeeEUR, p.AvgasPerLitreEUR)
	if err != nil {
		return fmt.Errorf("enrich: set pricing %s: %w", ident, err)
	}
	return nil
}

// SetPersonaScore upserts one persona desirability score.
func (s *SQLite) SetPersonaScore(ctx context.Context, personaID, ident string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO persona_scores (persona_id, ident, score) VALUES (?, ?, ?)
ON CONFLICT(persona_id, ident) DO UPDATE SET score=excluded.score`,
		personaID, strings.ToUpper(ident), score)
	if err != nil {
		return fmt.Errorf("enrich: set persona score %s/%s: %w", personaID, ident, err)
	}
	return nil
}
