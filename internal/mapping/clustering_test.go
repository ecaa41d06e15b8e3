package mapping_test

import (
	"testing"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

func TestBuildAggregated_CollapsesTimeAndCountsODPairs(t *testing.T) {
	stations := []problemdata.Station{{ID: 1, Lon: 0, Lat: 0}, {ID: 2, Lon: 1, Lat: 0}}
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 08:00:00")},
		{ID: 2, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 20:00:00")},
		{ID: 3, OriginID: 2, DestinationID: 1, RequestTime: mustParseTime(t, "2026-01-01 08:05:00")},
	}
	pd, err := problemdata.Build(stations, requests, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	am, err := mapping.BuildAggregated(pd, mapping.Params{K: 1, L: 1})
	if err != nil {
		t.Fatalf("BuildAggregated: %v", err)
	}

	want12 := mapping.ODPair{OriginID: 1, DestinationID: 2}
	want21 := mapping.ODPair{OriginID: 2, DestinationID: 1}
	if got := am.Q[1][want12]; got != 2 {
		t.Fatalf("Q[1][1->2] = %d, want 2 (time dimension collapsed)", got)
	}
	if got := am.Q[1][want21]; got != 1 {
		t.Fatalf("Q[1][2->1] = %d, want 1", got)
	}
	if len(am.Omega[1]) != 2 {
		t.Fatalf("len(Omega[1]) = %d, want 2 distinct OD pairs", len(am.Omega[1]))
	}
	// sorted by (OriginID, DestinationID): 1->2 before 2->1.
	if am.Omega[1][0] != want12 || am.Omega[1][1] != want21 {
		t.Fatalf("Omega[1] = %+v, not sorted by origin then destination", am.Omega[1])
	}
	if am.FeasiblePairs != nil {
		t.Fatal("FeasiblePairs should be nil when HasWalkLimit is false")
	}
}

func TestBuildAggregated_PropagatesParamValidationError(t *testing.T) {
	pd, err := problemdata.Build(nil, nil, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := mapping.BuildAggregated(pd, mapping.Params{K: 0, L: 0}); err == nil {
		t.Fatal("BuildAggregated: want InvalidParameterError for K=0, got nil")
	}
}
