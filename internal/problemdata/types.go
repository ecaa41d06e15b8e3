// Package problemdata holds the immutable input bundle the rest of the
// station-selection core builds against: stations, cost matrices and
// demand scenarios. Nothing in this package touches a database or a
// solver; it is pure data modeling, the way the teacher's
// internal/routing/types.go is pure data modeling for RAPTOR.
package problemdata

import "time"

// StationIndex is a 1-based dense array index used for all matrix/slice
// positions inside the core. Never mix a StationIndex with a station id in
// the same variable: ids are for human-facing data, indices are for dense
// lookups.
type StationIndex int

// Station is identified by an opaque integer id; coordinates are carried
// only for the benefit of the external cost-computation collaborator and
// are never interpreted by the core itself.
type Station struct {
	ID  int64
	Lon float64
	Lat float64
}

// Request is never carried individually through the model; requests are
// aggregated into demand counts by the index mapping builders.
type Request struct {
	ID            int64
	OriginID      int64
	DestinationID int64
	RequestTime   time.Time
}

// Scenario is an optional time window with a human-readable label and the
// requests whose RequestTime falls in [Start, End]. HasWindow is false for
// an all-time scenario (no start/end supplied).
type Scenario struct {
	Label     string
	HasWindow bool
	Start     time.Time
	End       time.Time
	Requests  []Request
}

// ParseRequestTime parses the ISO 8601 "YYYY-MM-DD HH:MM:SS" format the
// Input-data interface (spec §6) specifies.
func ParseRequestTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}
