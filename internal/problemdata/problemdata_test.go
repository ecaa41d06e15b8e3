package problemdata_test

import (
	"errors"
	"testing"
	"time"

	"github.com/antigravity/stationselect/internal/problemdata"
)

func baseStations() []problemdata.Station {
	return []problemdata.Station{
		{ID: 1, Lon: 0, Lat: 0},
		{ID: 2, Lon: 1, Lat: 1},
		{ID: 3, Lon: 2, Lat: 2},
	}
}

func TestBuild_StationIndexIsOneBasedAndStable(t *testing.T) {
	pd, err := problemdata.Build(baseStations(), nil, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pd.StationCount() != 3 {
		t.Fatalf("StationCount = %d, want 3", pd.StationCount())
	}
	for i, id := range []int64{1, 2, 3} {
		idx, ok := pd.StationIndexOf(id)
		if !ok {
			t.Fatalf("StationIndexOf(%d): not found", id)
		}
		if int(idx) != i+1 {
			t.Errorf("StationIndexOf(%d) = %d, want %d", id, idx, i+1)
		}
		if got := pd.StationID(idx); got != id {
			t.Errorf("StationID(%d) = %d, want %d", idx, got, id)
		}
	}
}

func TestBuild_RejectsRequestWithUnknownStation(t *testing.T) {
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 99, RequestTime: time.Now()},
	}
	_, err := problemdata.Build(baseStations(), requests, nil, map[problemdata.CostKey]float64{}, nil)
	var malformed *problemdata.MalformedRequestError
	if !errors.As(err, &malformed) {
		t.Fatalf("Build: want *MalformedRequestError, got %T: %v", err, err)
	}
}

func TestBuild_DropsEmptyScenariosAndRecoversCallerIndex(t *testing.T) {
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 2, RequestTime: mustParse("2026-01-01 08:00:00")},
	}
	windows := []problemdata.ScenarioWindow{
		{Label: "empty-morning", HasWindow: true, Start: "2026-01-01 00:00:00", End: "2026-01-01 06:00:00"},
		{Label: "populated-morning", HasWindow: true, Start: "2026-01-01 07:00:00", End: "2026-01-01 09:00:00"},
	}
	pd, err := problemdata.Build(baseStations(), requests, windows, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pd.ScenarioCount() != 1 {
		t.Fatalf("ScenarioCount = %d, want 1 (empty-morning dropped)", pd.ScenarioCount())
	}
	if got := pd.Scenario(1).Label; got != "populated-morning" {
		t.Fatalf("Scenario(1).Label = %q, want %q", got, "populated-morning")
	}
	if got := pd.CallerScenarioIndex(1); got != 1 {
		t.Fatalf("CallerScenarioIndex(1) = %d, want 1 (original ordinal of populated-morning)", got)
	}
}

func TestBuild_NoWindowsYieldsOneDefaultScenarioWithAllRequests(t *testing.T) {
	requests := []problemdata.Request{
		{ID: 1, OriginID: 1, DestinationID: 2, RequestTime: mustParse("2026-01-01 08:00:00")},
		{ID: 2, OriginID: 2, DestinationID: 3, RequestTime: mustParse("2026-06-01 20:00:00")},
	}
	pd, err := problemdata.Build(baseStations(), requests, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pd.ScenarioCount() != 1 {
		t.Fatalf("ScenarioCount = %d, want 1", pd.ScenarioCount())
	}
	if got := len(pd.Scenario(1).Requests); got != 2 {
		t.Fatalf("Scenario(1).Requests has %d entries, want 2", got)
	}
}

func TestWalkingCost_MissingEntryIsAnError(t *testing.T) {
	pd, err := problemdata.Build(baseStations(), nil, nil, map[problemdata.CostKey]float64{
		{From: 1, To: 2}: 120,
	}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v, err := pd.WalkingCost(1, 2); err != nil || v != 120 {
		t.Fatalf("WalkingCost(1,2) = (%v, %v), want (120, nil)", v, err)
	}
	if _, err := pd.WalkingCost(1, 3); err == nil {
		t.Fatal("WalkingCost(1,3): want MissingCostError, got nil")
	}
}

func TestRoutingCost_UnavailableWhenMatrixAbsent(t *testing.T) {
	pd, err := problemdata.Build(baseStations(), nil, nil, map[problemdata.CostKey]float64{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pd.HasRoutingCosts() {
		t.Fatal("HasRoutingCosts() = true, want false (nil routing matrix)")
	}
	if _, err := pd.RoutingCost(1, 2); err != problemdata.ErrRoutingUnavailable {
		t.Fatalf("RoutingCost: want ErrRoutingUnavailable, got %v", err)
	}
}

func TestRoutingCost_AvailableWhenMatrixSupplied(t *testing.T) {
	pd, err := problemdata.Build(baseStations(), nil, nil, map[problemdata.CostKey]float64{}, map[problemdata.CostKey]float64{
		{From: 1, To: 2}: 300,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !pd.HasRoutingCosts() {
		t.Fatal("HasRoutingCosts() = false, want true")
	}
	v, err := pd.RoutingCost(1, 2)
	if err != nil || v != 300 {
		t.Fatalf("RoutingCost(1,2) = (%v, %v), want (300, nil)", v, err)
	}
}

func mustParse(s string) time.Time {
	t, err := problemdata.ParseRequestTime(s)
	if err != nil {
		panic(err)
	}
	return t
}
