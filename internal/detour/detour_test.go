package detour_test

import (
	"testing"

	"github.com/antigravity/stationselect/internal/detour"
	"github.com/antigravity/stationselect/internal/problemdata"
)

func stations3() []problemdata.Station {
	return []problemdata.Station{
		{ID: 10, Lon: 0, Lat: 0},
		{ID: 20, Lon: 1, Lat: 0},
		{ID: 30, Lon: 2, Lat: 0},
	}
}

func symmetricRouting(r12, r23, r13 float64) map[problemdata.CostKey]float64 {
	return map[problemdata.CostKey]float64{
		{From: 10, To: 20}: r12, {From: 20, To: 10}: r12,
		{From: 20, To: 30}: r23, {From: 30, To: 20}: r23,
		{From: 10, To: 30}: r13, {From: 30, To: 10}: r13,
	}
}

func buildPD(t *testing.T, routing map[problemdata.CostKey]float64) *problemdata.ProblemData {
	t.Helper()
	pd, err := problemdata.Build(stations3(), nil, nil, map[problemdata.CostKey]float64{}, routing)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pd
}

func TestBuild_AdmitsLongestEdgeTripleAndDedupesInverse(t *testing.T) {
	pd := buildPD(t, symmetricRouting(3, 4, 7))

	tables, err := detour.Build(pd, 0, 0, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tables.SameSource) != 1 {
		t.Fatalf("len(SameSource) = %d, want 1 (4 rejected on longest-edge, 1 deduped against its inverse)", len(tables.SameSource))
	}
	got := tables.SameSource[0]
	if got.J != 1 || got.K != 2 || got.L != 3 {
		t.Fatalf("SameSource[0] = %+v, want J=1,K=2,L=3", got)
	}
	if idx := tables.IndexOfSameSource(1, 2, 3); idx != 0 {
		t.Fatalf("IndexOfSameSource(1,2,3) = %d, want 0", idx)
	}
	if idx := tables.IndexOfSameSource(3, 2, 1); idx != -1 {
		t.Fatalf("IndexOfSameSource(3,2,1) = %d, want -1 (inverse ordering never admitted)", idx)
	}
	if idx := tables.IndexOfSameSource(1, 3, 2); idx != -1 {
		t.Fatalf("IndexOfSameSource(1,3,2) = %d, want -1 (2 is not the longest edge)", idx)
	}
	if len(tables.SameDest) != 0 {
		t.Fatalf("len(SameDest) = %d, want 0 (timeWindowSec == 0)", len(tables.SameDest))
	}
}

func TestBuild_RejectsTriangleInequalityViolation(t *testing.T) {
	pd := buildPD(t, symmetricRouting(1, 1, 5))

	tables, err := detour.Build(pd, 0, 0, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tables.SameSource) != 0 {
		t.Fatalf("len(SameSource) = %d, want 0 (rab+rbc < rac on the long edge)", len(tables.SameSource))
	}
}

func TestBuild_RejectsTripleOverRoutingDelayBudget(t *testing.T) {
	pd := buildPD(t, symmetricRouting(3, 4, 6))

	tables, err := detour.Build(pd, 0, 0, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tables.SameSource) != 0 {
		t.Fatalf("len(SameSource) = %d, want 0 (rab+rbc=7 exceeds rac+delta=6)", len(tables.SameSource))
	}

	tables, err = detour.Build(pd, 1, 0, nil)
	if err != nil {
		t.Fatalf("Build with routingDelay=1: %v", err)
	}
	if len(tables.SameSource) != 1 {
		t.Fatalf("len(SameSource) = %d, want 1 once the detour budget covers the extra unit", len(tables.SameSource))
	}
}

func TestBuild_ComputesSameDestDeltaTFromBucketWidth(t *testing.T) {
	pd := buildPD(t, symmetricRouting(3, 4, 7))

	tables, err := detour.Build(pd, 0, 2, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tables.SameDest) != 1 {
		t.Fatalf("len(SameDest) = %d, want 1", len(tables.SameDest))
	}
	quad := tables.SameDest[0]
	if quad.J != 1 || quad.K != 2 || quad.L != 3 {
		t.Fatalf("SameDest[0] = %+v, want J=1,K=2,L=3", quad)
	}
	if quad.DeltaT != 1 {
		t.Fatalf("DeltaT = %d, want 1 (int(r_ab=3) / timeWindowSec=2)", quad.DeltaT)
	}
}
