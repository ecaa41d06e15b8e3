// Package solverx wraps github.com/nextmv-io/sdk/mip with the solve-option
// plumbing every MILP built by this core shares: the main model variants
// (internal/model) and the k-medoid clustering MILP (internal/zonecluster)
// both go through here, per spec §4.4 ("a small MILP solved by the same
// external solver used for the main models"). Each Solve call creates its
// own solver with mip.NewSolver; no solver environment is kept or shared
// between calls.
//
// Grounded on other_examples/..nextmv-io-farmshare..main.go.go: the same
// mip.NewSolver("highs", m) / mip.NewSolveOptions() / SetMaximumDuration /
// SetMIPGapRelative / SetVerbosity sequence, generalized into a reusable
// helper instead of being repeated inline per model.
package solverx

import (
	"time"

	"github.com/nextmv-io/sdk/mip"
)

// Options configures one solve call. Verbose toggles solver log output
// (spec §6, "toggling log output").
type Options struct {
	Provider      string // solver provider name; DefaultOptions sets "highs"
	TimeLimit     time.Duration
	MIPGapRelative float64
	Verbose       bool
}

// DefaultOptions mirrors the nextmv-farmshare example's defaults: highs
// provider, a finite duration limit (never unlimited in a batch run), zero
// relative gap (exact optimum) unless the caller relaxes it.
func DefaultOptions() Options {
	return Options{
		Provider:       "highs",
		TimeLimit:      30 * time.Second,
		MIPGapRelative: 0,
		Verbose:        false,
	}
}

// Status is the termination status vocabulary of spec §6.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusTimeLimit  Status = "time_limit"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusNotCalled  Status = "not_called"
	StatusError      Status = "error"
)

// Result normalizes a mip.Solution into the status/value vocabulary the
// rest of the core (solution extraction, metadata documents) consumes.
type Result struct {
	Status         Status
	ObjectiveValue float64
	HasValues      bool
	RunTime        time.Duration
	Solution       mip.Solution
}

// SolverError carries the solver's own non-terminal/failed status, per
// spec §7 ("SolverError — non-terminal or numerically failed solver call;
// carries the solver's status code").
type SolverError struct {
	Status Status
	Cause  error
}

func (e *SolverError) Error() string {
	if e.Cause != nil {
		return "solverx: solve failed (" + string(e.Status) + "): " + e.Cause.Error()
	}
	return "solverx: solve failed (" + string(e.Status) + ")"
}

func (e *SolverError) Unwrap() error { return e.Cause }

// Solve builds a solver for m with opts and solves it, returning a
// normalized Result. A solver-level error (e.g. the provider failed to
// start) surfaces as *SolverError with StatusError, never panics and never
// retries (spec §7, "Nothing is retried").
func Solve(m mip.Model, opts Options) (Result, error) {
	solver, err := mip.NewSolver(opts.Provider, m)
	if err != nil {
		return Result{Status: StatusError}, &SolverError{Status: StatusError, Cause: err}
	}

	solveOptions := mip.NewSolveOptions()
	if opts.TimeLimit > 0 {
		if err := solveOptions.SetMaximumDuration(opts.TimeLimit); err != nil {
			return Result{Status: StatusError}, &SolverError{Status: StatusError, Cause: err}
		}
	}
	if err := solveOptions.SetMIPGapRelative(opts.MIPGapRelative); err != nil {
		return Result{Status: StatusError}, &SolverError{Status: StatusError, Cause: err}
	}
	if opts.Verbose {
		solveOptions.SetVerbosity(mip.Medium)
	} else {
		solveOptions.SetVerbosity(mip.Off)
	}

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return Result{Status: StatusError}, &SolverError{Status: StatusError, Cause: err}
	}

	if solution == nil || !solution.HasValues() {
		return Result{Status: StatusInfeasible, Solution: solution}, nil
	}

	status := StatusTimeLimit
	if solution.IsOptimal() {
		status = StatusOptimal
	}

	return Result{
		Status:         status,
		ObjectiveValue: solution.ObjectiveValue(),
		HasValues:      true,
		RunTime:        solution.RunTime(),
		Solution:       solution,
	}, nil
}

// valueSetter is a best-effort warm-start hook: if a concrete nextmv
// variable type exposes a SetValue(float64) method, ApplyWarmStart uses
// it; if not, the assignment is silently skipped rather than failing the
// build (spec §9, "warm start... a valid use case"; applying one is
// strictly an optimization-time hint, never a correctness requirement).
type valueSetter interface {
	SetValue(float64)
}

// ApplyWarmStart sets a starting value on each variable present in
// values, best-effort.
func ApplyWarmStart(vars map[string]mip.Var, values map[string]float64) {
	for key, val := range values {
		v, ok := vars[key]
		if !ok {
			continue
		}
		if vs, ok := any(v).(valueSetter); ok {
			vs.SetValue(val)
		}
	}
}
