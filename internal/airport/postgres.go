package airport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"avroute/internal/geo"
	"avroute/internal/model"
)

// Postgres backs the catalog with a database when DATABASE_URL is set. The
// SQL layer does a cheap bounding prefilter; exact great-circle math runs in
// process so both backends agree on the geometry.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens and pings a connection, then makes sure the schema
// exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("airport: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("airport: ping: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS airports (
    ident            TEXT PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    country          TEXT NOT NULL DEFAULT '',
    lat              DOUBLE PRECISION NOT NULL,
    lon              DOUBLE PRECISION NOT NULL,
    longest_runway_m INTEGER NOT NULL DEFAULT 0,
    has_avgas        BOOLEAN NOT NULL DEFAULT FALSE,
    has_jet_a        BOOLEAN NOT NULL DEFAULT FALSE,
    has_procedures   BOOLEAN NOT NULL DEFAULT FALSE,
    point_of_entry   BOOLEAN NOT NULL DEFAULT FALSE
)`)
	if err != nil {
		return fmt.Errorf("airport: ensure schema: %w", err)
	}
	return nil
}

// SeedIfEmpty loads the embedded catalog into an empty table so a fresh
// database behaves like the memory backend.
func (p *Postgres) SeedIfEmpty(ctx context.Context) error {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM airports`).Scan(&n); err != nil {
		return fmt.Errorf("airport: count: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, ap := range Seed() {
		_, err := p.db.ExecContext(ctx, `
INSERT INTO airports (ident, name, country, lat, lon, longest_runway_m, has_avgas, has_jet_a, has_procedures, point_of_entry)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (ident) DO NOTHING`,
			ap.Ident, ap.Name, ap.Country, ap.Point.Lat, ap.Point.Lon,
			ap.LongestRunwayM, ap.HasAvgas, ap.HasJetA, ap.HasProcedures, ap.PointOfEntry)
		if err != nil {
			return fmt.Errorf("airport: seed %s: %w", ap.Ident, err)
		}
	}
	return nil
}

const selectCols = `ident, name, country, lat, lon, longest_runway_m, has_avgas, has_jet_a, has_procedures, point_of_entry`

func scanAirport(row interface{ Scan(...any) error }) (model.Airport, error) {
	var ap model.Airport
	err := row.Scan(&ap.Ident, &ap.Name, &ap.Country, &ap.Point.Lat, &ap.Point.Lon,
		&ap.LongestRunwayM, &ap.HasAvgas, &ap.HasJetA, &ap.HasProcedures, &ap.PointOfEntry)
	return ap, err
}

func (p *Postgres) ByIdent(ctx context.Context, ident string) (model.Airport, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM airports WHERE ident = $1`, strings.ToUpper(ident))
	ap, err := scanAirport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Airport{}, ErrNotFound
	}
	if err != nil {
		return model.Airport{}, fmt.Errorf("airport: by ident %s: %w", ident, err)
	}
	return ap, nil
}

func (p *Postgres) All(ctx context.Context) ([]model.Airport, error) {
	return p.query(ctx, `SELECT `+selectCols+` FROM airports ORDER BY ident`)
}

func (p *Postgres) query(ctx context.Context, q string, args ...any) ([]model.Airport, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("airport: query: %w", err)
	}
	defer rows.Close()
	out := []model.Airport{}
	for rows.Next() {
		ap, err := scanAirport(rows)
		if err != nil {
			return nil, fmt.Errorf("airport: scan: %w", err)
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}

// latBoundDeg converts a great-circle radius to a latitude delta for the SQL
// bounding prefilter. Longitude shrinks toward the poles, so the prefilter
// only bounds latitude and leaves the rest to the exact in-process check.
func latBoundDeg(radiusNM float64) float64 {
	return radiusNM/60.0 + 0.1
}

func (p *Postgres) NearPoint(ctx context.Context, pt model.NavPoint, radiusNM float64) ([]model.Airport, error) {
	d := latBoundDeg(radiusNM)
	rough, err := p.query(ctx,
		`SELECT `+selectCols+` FROM airports WHERE lat BETWEEN $1 AND $2 ORDER BY ident`,
		pt.Lat-d, pt.Lat+d)
	if err != nil {
		return nil, err
	}
	out := []model.Airport{}
	for _, ap := range rough {
		if geo.DistanceNM(pt, ap.Point) <= radiusNM {
			out = append(out, ap)
		}
	}
	return out, nil
}

// routeLatBounds is the latitude window for the NearRoute prefilter. A great
// circle bulges poleward past both endpoint latitudes on east-west routes, and
// the excursion never exceeds half the arc length, so the window widens by
// that much on top of the corridor width. Over-returning is fine; the exact
// cross-track check prunes the rest.
func routeLatBounds(start, end model.NavPoint, widthNM float64) (lo, hi float64) {
	lo, hi = start.Lat, end.Lat
	if lo > hi {
		lo, hi = hi, lo
	}
	d := latBoundDeg(widthNM + geo.DistanceNM(start, end)/2)
	return lo - d, hi + d
}

func (p *Postgres) NearRoute(ctx context.Context, start, end model.NavPoint, widthNM float64) ([]model.Airport, error) {
	lo, hi := routeLatBounds(start, end, widthNM)
	rough, err := p.query(ctx,
		`SELECT `+selectCols+` FROM airports WHERE lat BETWEEN $1 AND $2 ORDER BY ident`,
		lo, hi)
	if err != nil {
		return nil, err
	}
	out := []model.Airport{}
	for _, ap := range rough {
		if geo.CrossTrackDistanceNM(ap.Point, start, end) <= widthNM {
			out = append(out, ap)
		}
	}
	return out, nil
}

// Close releases the database handle.
func (p *Postgres) Close() error { return p.db.Close() }
