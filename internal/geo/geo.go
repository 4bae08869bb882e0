// Package geo provides great-circle geometry over NavPoints. All functions
// are pure and safe for unsynchronized concurrent use; all distances are
// nautical miles.
package geo

import (
	"math"

	"avroute/internal/model"
)

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceNM returns the great-circle distance between a and b via the
// haversine formula. Symmetric; zero iff a == b within floating tolerance.
func DistanceNM(a, b model.NavPoint) float64 {
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusNM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// initialBearingRad returns the initial bearing from a to b in radians.
func initialBearingRad(a, b model.NavPoint) float64 {
	dLon := rad(b.Lon - a.Lon)
	y := math.Sin(dLon) * math.Cos(rad(b.Lat))
	x := math.Cos(rad(a.Lat))*math.Sin(rad(b.Lat)) -
		math.Sin(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Cos(dLon)
	return math.Atan2(y, x)
}

// CrossTrackDistanceNM returns the unsigned perpendicular distance from
// point to the great-circle path through start->end.
func CrossTrackDistanceNM(point, start, end model.NavPoint) float64 {
	d13 := DistanceNM(start, point) / EarthRadiusNM // angular distance start->point
	if d13 == 0 {
		return 0
	}
	t13 := initialBearingRad(start, point)
	t12 := initialBearingRad(start, end)
	xt := math.Asin(clamp1(math.Sin(d13) * math.Sin(t13-t12)))
	return math.Abs(xt * EarthRadiusNM)
}

// AlongTrackDistanceNM returns the signed arc-length projection of point
// onto the start->end path: negative when the point lies behind start
// relative to the direction of travel.
func AlongTrackDistanceNM(point, start, end model.NavPoint) float64 {
	d13 := DistanceNM(start, point) / EarthRadiusNM
	if d13 == 0 {
		return 0
	}
	t13 := initialBearingRad(start, point)
	t12 := initialBearingRad(start, end)
	xt := math.Asin(clamp1(math.Sin(d13) * math.Sin(t13-t12)))
	at := math.Acos(clamp1(math.Cos(d13)/math.Cos(xt))) * EarthRadiusNM
	if math.Cos(t13-t12) < 0 {
		return -at
	}
	return at
}

// InCorridor reports whether point lies within corridorWidthNM of the
// start->end great circle and at least minForwardProgressNM along it. The
// forward-progress bound rejects candidates that are near the line but
// behind the direction of travel.
func InCorridor(point, start, end model.NavPoint, corridorWidthNM, minForwardProgressNM float64) bool {
	if CrossTrackDistanceNM(point, start, end) > corridorWidthNM {
		return false
	}
	return AlongTrackDistanceNM(point, start, end) >= minForwardProgressNM
}

// clamp1 bounds v to [-1, 1] so Asin/Acos stay in domain under float error.
func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
