// Package dto holds the wire/row records exchanged with Postgres and the
// HTTP API, and their conversion into problemdata's domain types.
package dto

import (
	"fmt"

	"github.com/antigravity/stationselect/internal/problemdata"
)

// StationRecord is a candidate station location, as stored and as
// received over HTTP.
type StationRecord struct {
	ID  int64   `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RequestRecord is a single travel request.
type RequestRecord struct {
	ID            int64  `json:"id"`
	OriginID      int64  `json:"origin_id"`
	DestinationID int64  `json:"destination_id"`
	RequestTime   string `json:"request_time"` // "YYYY-MM-DD HH:MM:SS"
}

// ScenarioWindowRecord names a demand scenario and, optionally, the time
// window requests are bucketed into it by.
type ScenarioWindowRecord struct {
	Label string `json:"label"`
	Start string `json:"start,omitempty"` // "YYYY-MM-DD HH:MM:SS"
	End   string `json:"end,omitempty"`   // "YYYY-MM-DD HH:MM:SS"
}

// CostEntryRecord is one (from, to) -> cost row of a walking or routing
// cost matrix.
type CostEntryRecord struct {
	FromID int64   `json:"from_id"`
	ToID   int64   `json:"to_id"`
	Cost   float64 `json:"cost"`
}

// ToStations converts station records into problemdata.Station values.
func ToStations(records []StationRecord) []problemdata.Station {
	out := make([]problemdata.Station, len(records))
	for i, r := range records {
		out[i] = problemdata.Station{ID: r.ID, Lon: r.Lon, Lat: r.Lat}
	}
	return out
}

// ToRequests converts request records into problemdata.Request values,
// parsing RequestTime in the Input-data interface's "YYYY-MM-DD HH:MM:SS"
// format.
func ToRequests(records []RequestRecord) ([]problemdata.Request, error) {
	out := make([]problemdata.Request, len(records))
	for i, r := range records {
		t, err := problemdata.ParseRequestTime(r.RequestTime)
		if err != nil {
			return nil, fmt.Errorf("dto: request %d: parse request_time %q: %w", r.ID, r.RequestTime, err)
		}
		out[i] = problemdata.Request{ID: r.ID, OriginID: r.OriginID, DestinationID: r.DestinationID, RequestTime: t}
	}
	return out, nil
}

// ToScenarioWindows converts scenario window records into
// problemdata.ScenarioWindow values. A record with an empty Start is an
// unwindowed (always-active) scenario.
func ToScenarioWindows(records []ScenarioWindowRecord) []problemdata.ScenarioWindow {
	out := make([]problemdata.ScenarioWindow, len(records))
	for i, r := range records {
		out[i] = problemdata.ScenarioWindow{
			Label:     r.Label,
			HasWindow: r.Start != "",
			Start:     r.Start,
			End:       r.End,
		}
	}
	return out
}

// ToCostMatrix converts cost entry records into the CostKey-keyed map the
// problemdata builder expects. Returns nil for an empty input, which
// problemdata.Build interprets as "routing costs absent".
func ToCostMatrix(records []CostEntryRecord) map[problemdata.CostKey]float64 {
	if len(records) == 0 {
		return nil
	}
	out := make(map[problemdata.CostKey]float64, len(records))
	for _, r := range records {
		out[problemdata.CostKey{From: r.FromID, To: r.ToID}] = r.Cost
	}
	return out
}
