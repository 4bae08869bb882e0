package model

import "time"

// NavPoint is a latitude/longitude pair in degrees. Immutable value type
// used for all geometry inputs.
type NavPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Airport is a read-only snapshot of an airport entity. Ownership lies with
// the airport repository; the engine never mutates one.
type Airport struct {
	Ident          string   `json:"ident"` // four-letter ICAO code
	Name           string   `json:"name,omitempty"`
	Country        string   `json:"country"` // ISO country code
	Point          NavPoint `json:"point"`
	LongestRunwayM int      `json:"longestRunwayM,omitempty"` // longest hard-surface runway; 0 = unknown
	HasAvgas       bool     `json:"hasAvgas,omitempty"`
	HasJetA        bool     `json:"hasJetA,omitempty"`
	HasProcedures  bool     `json:"hasProcedures,omitempty"` // published instrument procedures
	PointOfEntry   bool     `json:"pointOfEntry,omitempty"`  // customs/immigration border crossing
}

// Hospitality summarizes amenity enrichment for an airport.
type Hospitality struct {
	Hotels      int `json:"hotels"`
	Restaurants int `json:"restaurants"`
}

// Pricing is optional fee enrichment for an airport.
type Pricing struct {
	LandingFeeEUR    float64 `json:"landingFeeEur"`
	AvgasPerLitreEUR float64 `json:"avgasPerLitreEur,omitempty"`
}

// AircraftRequirements carries the hard constraints of the aircraft flown.
type AircraftRequirements struct {
	FuelType      string  `json:"fuelType,omitempty"` // "avgas" or "jet_a"
	MinRunwayM    int     `json:"minRunwayM,omitempty"`
	CruiseSpeedKt float64 `json:"cruiseSpeedKt,omitempty"`
}

// RouteLeg is one flown segment of a planned route. Immutable once produced.
type RouteLeg struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceNM float64 `json:"distanceNm"`
	ToAirport  Airport `json:"toAirport"`
}

// StopDetail describes one intermediate stop of a planned route.
type StopDetail struct {
	Airport      Airport `json:"airport"`
	Desirability float64 `json:"desirability"` // 0..100
}

// PlannedRoute is the assembled result of a route search. Derived, not
// persisted.
type PlannedRoute struct {
	ID              string       `json:"id"`
	Legs            []RouteLeg   `json:"legs"`
	Stops           []StopDetail `json:"stops"` // excludes departure
	TotalDistanceNM float64      `json:"totalDistanceNm"`
	EstTimeHours    float64      `json:"estTimeHours,omitempty"` // 0 when no cruise speed supplied
	Desirability    float64      `json:"desirability"`           // mean of per-stop scores
	NodesExpanded   int          `json:"nodesExpanded,omitempty"`
}

// ScoredCandidate is one ranked airport. Bucket strictly dominates Score in
// the final ordering; Score is a tiebreak where lower is better, and
// DistanceNM is the final tiebreak.
type ScoredCandidate struct {
	Airport    Airport        `json:"airport"`
	Bucket     int            `json:"bucket"`
	Score      float64        `json:"score"`
	DistanceNM float64        `json:"distanceNm"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// RouteSession tracks a partially confirmed multi-stop plan across
// interactive turns. Evicted after a TTL measured from UpdatedAt.
type RouteSession struct {
	ID             string    `json:"id"`
	Departure      string    `json:"departure"`
	Destination    string    `json:"destination"`
	TargetStops    int       `json:"targetStops"`
	ConfirmedStops []string  `json:"confirmedStops"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IsComplete reports whether enough stops were confirmed. A zero-target
// session is complete from the start and accepts no stops.
func (s RouteSession) IsComplete() bool {
	return len(s.ConfirmedStops) >= s.TargetStops
}

// HasStop reports whether ident is already confirmed.
func (s RouteSession) HasStop(ident string) bool {
	for _, st := range s.ConfirmedStops {
		if st == ident {
			return true
		}
	}
	return false
}
