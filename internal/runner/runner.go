// Package runner is the single orchestration point both the HTTP API and
// the CLI call: given a ProblemData and a variant request, it builds the
// index mapping, assembles the model, solves it, and extracts artifacts.
// Neither caller duplicates this sequence (spec §6, "internal/httpapi and
// cmd/stationselect are the concrete callers of the Input-data interface
// and Output-artifacts contract").
package runner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/antigravity/stationselect/internal/detour"
	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solution"
	"github.com/antigravity/stationselect/internal/solverx"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

// Request names a model variant and every parameter its mapping,
// assembly, and solve stages need.
type Request struct {
	Variant       mapping.Variant
	Params        mapping.Params
	ClusterParams zonecluster.Params // corridor/transportation variants only
	Weights       model.Weights
	SolveOptions  solverx.Options
}

// Outcome is the variant-tagged result of one run: exactly one of the
// artifact fields is populated, matching Request.Variant.
type Outcome struct {
	Variant        mapping.Variant
	Status         solverx.Status
	ObjectiveValue float64

	Pooling        *solution.PoolingArtifacts
	Clustering     *solution.ClusteringArtifacts
	Corridor       *solution.CorridorArtifacts
	Transportation *solution.TransportationArtifacts
}

// Run executes one build+solve+extract cycle for req against pd.
func Run(pd *problemdata.ProblemData, req Request, logger *zap.Logger) (*Outcome, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	weights := []struct {
		name  string
		value float64
	}{
		{"Alpha", req.Weights.Alpha},
		{"Gamma", req.Weights.Gamma},
		{"CorridorWeight", req.Weights.CorridorWeight},
		{"InVehicleTimeWeight", req.Weights.InVehicleTimeWeight},
		{"ActivationCost", req.Weights.ActivationCost},
	}
	for _, w := range weights {
		if w.value < 0 {
			return nil, &problemdata.InvalidParameterError{Param: w.name, Reason: "must be non-negative"}
		}
	}
	sugar := logger.Sugar()

	switch req.Variant {
	case mapping.VariantPooling:
		detourTables, err := detour.Build(pd, req.Params.RoutingDelay, req.Params.TimeWindowSec, sugar)
		if err != nil {
			return nil, fmt.Errorf("runner: build detour tables: %w", err)
		}
		pm, err := mapping.BuildPooling(pd, detourTables, req.Params)
		if err != nil {
			return nil, fmt.Errorf("runner: build pooling mapping: %w", err)
		}
		built, err := model.BuildPoolingModel(pd, pm, req.Weights)
		if err != nil {
			return nil, fmt.Errorf("runner: assemble pooling model: %w", err)
		}
		sol, err := solverx.Solve(built.Model, req.SolveOptions)
		if err != nil {
			return nil, err
		}
		art, err := solution.ExtractPooling(pd, pm, built, sol)
		if err != nil {
			return nil, fmt.Errorf("runner: extract pooling artifacts: %w", err)
		}
		return &Outcome{Variant: req.Variant, Status: sol.Status, ObjectiveValue: sol.ObjectiveValue, Pooling: art}, nil

	case mapping.VariantClustering:
		am, err := mapping.BuildAggregated(pd, req.Params)
		if err != nil {
			return nil, fmt.Errorf("runner: build clustering mapping: %w", err)
		}
		built, err := model.BuildClusteringModel(pd, am, req.Weights)
		if err != nil {
			return nil, fmt.Errorf("runner: assemble clustering model: %w", err)
		}
		sol, err := solverx.Solve(built.Model, req.SolveOptions)
		if err != nil {
			return nil, err
		}
		art, err := solution.ExtractClustering(pd, am, built, sol)
		if err != nil {
			return nil, fmt.Errorf("runner: extract clustering artifacts: %w", err)
		}
		return &Outcome{Variant: req.Variant, Status: sol.Status, ObjectiveValue: sol.ObjectiveValue, Clustering: art}, nil

	case mapping.VariantCorridorZ, mapping.VariantCorridorX:
		cm, err := mapping.BuildCorridor(pd, req.Params, req.ClusterParams)
		if err != nil {
			return nil, fmt.Errorf("runner: build corridor mapping: %w", err)
		}
		useX := req.Variant == mapping.VariantCorridorX
		built, err := model.BuildCorridorModel(pd, cm, req.Weights, useX)
		if err != nil {
			return nil, fmt.Errorf("runner: assemble corridor model: %w", err)
		}
		sol, err := solverx.Solve(built.Model, req.SolveOptions)
		if err != nil {
			return nil, err
		}
		art, err := solution.ExtractCorridor(pd, cm, built, sol)
		if err != nil {
			return nil, fmt.Errorf("runner: extract corridor artifacts: %w", err)
		}
		return &Outcome{Variant: req.Variant, Status: sol.Status, ObjectiveValue: sol.ObjectiveValue, Corridor: art}, nil

	case mapping.VariantTransportation:
		tm, err := mapping.BuildTransportation(pd, req.ClusterParams)
		if err != nil {
			return nil, fmt.Errorf("runner: build transportation mapping: %w", err)
		}
		built, err := model.BuildTransportationModel(pd, tm, req.Params, req.Weights)
		if err != nil {
			return nil, fmt.Errorf("runner: assemble transportation model: %w", err)
		}
		sol, err := solverx.Solve(built.Model, req.SolveOptions)
		if err != nil {
			return nil, err
		}
		art, err := solution.ExtractTransportation(pd, tm, built, sol)
		if err != nil {
			return nil, fmt.Errorf("runner: extract transportation artifacts: %w", err)
		}
		return &Outcome{Variant: req.Variant, Status: sol.Status, ObjectiveValue: sol.ObjectiveValue, Transportation: art}, nil

	default:
		return nil, fmt.Errorf("runner: unknown variant %v", req.Variant)
	}
}
