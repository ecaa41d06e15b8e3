package mapping_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

func stations3(t *testing.T) *problemdata.ProblemData {
	t.Helper()
	walking := map[problemdata.CostKey]float64{
		{From: 100, To: 1}: 5, {From: 100, To: 2}: 15, {From: 100, To: 3}: 5,
		{From: 1, To: 200}: 5, {From: 2, To: 200}: 5, {From: 3, To: 200}: 20,
	}
	pd, err := problemdata.Build([]problemdata.Station{
		{ID: 1, Lon: 0, Lat: 0},
		{ID: 2, Lon: 1, Lat: 0},
		{ID: 3, Lon: 2, Lat: 0},
	}, nil, nil, walking, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pd
}

func TestBuildFeasiblePairs_CrossProductUnderWalkingLimit(t *testing.T) {
	pd := stations3(t)
	od := mapping.ODPair{OriginID: 100, DestinationID: 200}

	fp, err := mapping.BuildFeasiblePairs(pd, map[mapping.ODPair]bool{od: true}, 10)
	if err != nil {
		t.Fatalf("BuildFeasiblePairs: %v", err)
	}

	want := []mapping.PairIdx{
		{Pickup: 1, Dropoff: 1},
		{Pickup: 1, Dropoff: 2},
		{Pickup: 3, Dropoff: 1},
		{Pickup: 3, Dropoff: 2},
	}
	if got := fp[od]; !reflect.DeepEqual(got, want) {
		t.Fatalf("feasible pairs = %+v, want %+v", got, want)
	}
}

func TestPairsForOD_SparseWhenFeasiblePairsSupplied(t *testing.T) {
	pd := stations3(t)
	od := mapping.ODPair{OriginID: 100, DestinationID: 200}
	fp, err := mapping.BuildFeasiblePairs(pd, map[mapping.ODPair]bool{od: true}, 10)
	if err != nil {
		t.Fatalf("BuildFeasiblePairs: %v", err)
	}

	got := mapping.PairsForOD(pd, od, fp)
	if len(got) != 4 {
		t.Fatalf("len(PairsForOD) = %d, want 4 (sparse feasible list)", len(got))
	}
}

func TestPairsForOD_DenseWhenFeasiblePairsNil(t *testing.T) {
	pd := stations3(t)
	od := mapping.ODPair{OriginID: 100, DestinationID: 200}

	got := mapping.PairsForOD(pd, od, nil)
	if len(got) != 9 {
		t.Fatalf("len(PairsForOD) = %d, want 9 (dense cross-product of 3 stations)", len(got))
	}
	if got[0] != (mapping.PairIdx{Pickup: 1, Dropoff: 1}) || got[8] != (mapping.PairIdx{Pickup: 3, Dropoff: 3}) {
		t.Fatalf("dense pairs not in expected row-major order: %+v", got)
	}
}

func TestParams_ValidateRejectsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name   string
		params mapping.Params
	}{
		{"K below 1", mapping.Params{K: 0, L: 0}},
		{"L below K", mapping.Params{K: 2, L: 1}},
		{"negative TimeWindowSec", mapping.Params{K: 1, L: 1, TimeWindowSec: -1}},
		{"negative WalkingLimit with HasWalkLimit", mapping.Params{K: 1, L: 1, HasWalkLimit: true, WalkingLimit: -5}},
		{"negative RoutingDelay", mapping.Params{K: 1, L: 1, RoutingDelay: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var invalid *problemdata.InvalidParameterError
			err := tc.params.Validate()
			if err == nil {
				t.Fatal("Validate: want InvalidParameterError, got nil")
			}
			if !errors.As(err, &invalid) {
				t.Fatalf("Validate: want *InvalidParameterError, got %T: %v", err, err)
			}
		})
	}
}

func TestParams_ValidateAcceptsBoundaryValues(t *testing.T) {
	p := mapping.Params{K: 1, L: 1, TimeWindowSec: 0, HasWalkLimit: true, WalkingLimit: 0, RoutingDelay: 0}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v, want nil at the boundary", err)
	}
}
