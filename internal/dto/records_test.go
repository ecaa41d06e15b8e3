package dto_test

import (
	"testing"

	"github.com/antigravity/stationselect/internal/dto"
)

func TestToRequests_ParsesWireTimeFormat(t *testing.T) {
	out, err := dto.ToRequests([]dto.RequestRecord{
		{ID: 1, OriginID: 10, DestinationID: 20, RequestTime: "2026-01-01 08:00:00"},
	})
	if err != nil {
		t.Fatalf("ToRequests: %v", err)
	}
	if len(out) != 1 || out[0].OriginID != 10 || out[0].DestinationID != 20 {
		t.Fatalf("ToRequests = %+v, want one converted request", out)
	}
}

func TestToRequests_RejectsUnparseableTime(t *testing.T) {
	_, err := dto.ToRequests([]dto.RequestRecord{
		{ID: 7, OriginID: 1, DestinationID: 2, RequestTime: "2026-01-01T08:00:00Z"},
	})
	if err == nil {
		t.Fatal("ToRequests: want an error for an RFC3339-formatted timestamp, got nil")
	}
}

func TestToScenarioWindows_EmptyStartMeansUnwindowed(t *testing.T) {
	out := dto.ToScenarioWindows([]dto.ScenarioWindowRecord{
		{Label: "always-on"},
		{Label: "morning", Start: "2026-01-01 07:00:00", End: "2026-01-01 09:00:00"},
	})
	if out[0].HasWindow {
		t.Fatalf("window %q: HasWindow = true, want false for an empty Start", out[0].Label)
	}
	if !out[1].HasWindow {
		t.Fatalf("window %q: HasWindow = false, want true", out[1].Label)
	}
}

func TestToCostMatrix_EmptyInputYieldsNil(t *testing.T) {
	if got := dto.ToCostMatrix(nil); got != nil {
		t.Fatalf("ToCostMatrix(nil) = %v, want nil", got)
	}
	if got := dto.ToCostMatrix([]dto.CostEntryRecord{}); got != nil {
		t.Fatalf("ToCostMatrix([]) = %v, want nil", got)
	}
}

func TestToCostMatrix_IndexesByFromTo(t *testing.T) {
	got := dto.ToCostMatrix([]dto.CostEntryRecord{{FromID: 1, ToID: 2, Cost: 42}})
	if len(got) != 1 {
		t.Fatalf("ToCostMatrix len = %d, want 1", len(got))
	}
}
