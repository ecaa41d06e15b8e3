package mapping_test

import (
	"errors"
	"testing"
	"time"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

func windowedPD(t *testing.T) *problemdata.ProblemData {
	t.Helper()
	stations := []problemdata.Station{
		{ID: 1, Lon: 0, Lat: 0},
		{ID: 2, Lon: 1, Lat: 0},
	}
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 08:00:00")},
		{ID: 2, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 08:14:00")},
		{ID: 3, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 08:16:00")},
	}
	windows := []problemdata.ScenarioWindow{
		{Label: "morning", HasWindow: true, Start: "2026-01-01 08:00:00", End: "2026-01-01 09:00:00"},
	}
	pd, err := problemdata.Build(stations, requests, windows, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pd
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := problemdata.ParseRequestTime(s)
	if err != nil {
		t.Fatalf("ParseRequestTime(%q): %v", s, err)
	}
	return tm
}

func TestBuildPooling_BucketsRequestsByTimeWindow(t *testing.T) {
	pd := windowedPD(t)
	params := mapping.Params{K: 1, L: 1, TimeWindowSec: 900} // 15-minute buckets

	pm, err := mapping.BuildPooling(pd, nil, params)
	if err != nil {
		t.Fatalf("BuildPooling: %v", err)
	}

	// 08:00:00 and 08:14:00 fall in bucket 0 (0..899s); 08:16:00 (960s) falls in bucket 1.
	if got := pm.Q[1][0][mapping.ODPair{OriginID: 1, DestinationID: 2}]; got != 2 {
		t.Fatalf("Q[1][0] = %d, want 2", got)
	}
	if got := pm.Q[1][1][mapping.ODPair{OriginID: 1, DestinationID: 2}]; got != 1 {
		t.Fatalf("Q[1][1] = %d, want 1", got)
	}

	buckets := pm.Buckets()
	want := []mapping.BucketKey{{Scenario: 1, TimeID: 0}, {Scenario: 1, TimeID: 1}}
	if len(buckets) != len(want) || buckets[0] != want[0] || buckets[1] != want[1] {
		t.Fatalf("Buckets() = %+v, want %+v (sorted by scenario then time)", buckets, want)
	}
}

func TestBuildPooling_RequiresTimeWindowSecPositive(t *testing.T) {
	pd := windowedPD(t)
	params := mapping.Params{K: 1, L: 1, TimeWindowSec: 0}

	_, err := mapping.BuildPooling(pd, nil, params)
	var invalid *problemdata.InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("BuildPooling: want *InvalidParameterError, got %T: %v", err, err)
	}
}

func TestBuildPooling_RejectsScenarioWithoutStartTime(t *testing.T) {
	stations := []problemdata.Station{{ID: 1, Lon: 0, Lat: 0}, {ID: 2, Lon: 1, Lat: 0}}
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 2, RequestTime: mustParseTime(t, "2026-01-01 08:00:00")},
	}
	pd, err := problemdata.Build(stations, requests, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = mapping.BuildPooling(pd, nil, mapping.Params{K: 1, L: 1, TimeWindowSec: 900})
	var want *problemdata.ScenarioStartRequiredError
	if !errors.As(err, &want) {
		t.Fatalf("BuildPooling: want *ScenarioStartRequiredError, got %T: %v", err, err)
	}
}
