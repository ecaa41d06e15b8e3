package solverx_test

import (
	"errors"
	"testing"
	"time"

	"github.com/antigravity/stationselect/internal/solverx"
)

func TestDefaultOptions_MatchesBatchDefaults(t *testing.T) {
	got := solverx.DefaultOptions()
	if got.Provider != "highs" {
		t.Fatalf("Provider = %q, want %q", got.Provider, "highs")
	}
	if got.TimeLimit != 30*time.Second {
		t.Fatalf("TimeLimit = %v, want 30s (never unlimited in a batch run)", got.TimeLimit)
	}
	if got.MIPGapRelative != 0 {
		t.Fatalf("MIPGapRelative = %v, want 0", got.MIPGapRelative)
	}
	if got.Verbose {
		t.Fatal("Verbose = true, want false")
	}
}

func TestSolverError_UnwrapsCause(t *testing.T) {
	cause := errors.New("provider unavailable")
	err := &solverx.SolverError{Status: solverx.StatusError, Cause: cause}

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got == "" {
		t.Fatal("Error() = empty string")
	}
}

func TestSolverError_WithoutCauseStillFormats(t *testing.T) {
	err := &solverx.SolverError{Status: solverx.StatusInfeasible}
	if got := err.Error(); got == "" {
		t.Fatal("Error() = empty string")
	}
	if err.Unwrap() != nil {
		t.Fatal("Unwrap() on a causeless SolverError should be nil")
	}
}
