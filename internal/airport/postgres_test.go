package airport

import (
	"testing"

	"avroute/internal/geo"
	"avroute/internal/model"
)

// An east-west great circle at high latitude arcs poleward past both endpoint
// latitudes. The SQL prefilter window must still cover on-path points, since
// the catalog contract is over-return, never drop.
func TestRouteLatBoundsCoverPolewardArc(t *testing.T) {
	start := model.NavPoint{Lat: 60, Lon: -10}
	end := model.NavPoint{Lat: 60, Lon: 30}
	mid := model.NavPoint{Lat: 61.519, Lon: 10}

	if xt := geo.CrossTrackDistanceNM(mid, start, end); xt > 1 {
		t.Fatalf("fixture midpoint is %.2f nm off path, want on path", xt)
	}
	lo, hi := routeLatBounds(start, end, 50)
	if mid.Lat < lo || mid.Lat > hi {
		t.Fatalf("window [%.3f, %.3f] excludes on-path latitude %.3f", lo, hi, mid.Lat)
	}
}

func TestRouteLatBoundsIncludeCorridorWidth(t *testing.T) {
	start := model.NavPoint{Lat: 51.3481, Lon: -0.5583}
	end := model.NavPoint{Lat: 43.5420, Lon: 6.9535}
	lo, hi := routeLatBounds(start, end, 50)
	// a 50 nm corridor reaches ~0.83 degrees beyond each endpoint latitude
	if lo > 43.5420-50.0/60.0 || hi < 51.3481+50.0/60.0 {
		t.Fatalf("window [%.3f, %.3f] narrower than the corridor", lo, hi)
	}
}
