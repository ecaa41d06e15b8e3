// Package model is the model assembler of spec §4.6: it builds the
// decision variables, constraints and objective for each of the five
// model variants and returns the assembled mip.Model (Base.Model) for the
// caller to solve through solverx. Every variant shares the first-stage/activation skeleton built
// here (y, z, the build-count and per-scenario activation-count
// constraints, and activation linking); the variants differ only in the
// assignment/flow/pooling superstructure added on top (see
// pooling_model.go, clustering_model.go, corridor_model.go,
// transportation_model.go).
//
// Grounded end to end on
// other_examples/..nextmv-io-farmshare..order_fulfillment-main.go.go: the
// model.NewMultiMap-per-variable-family, m.NewConstraint(sense,
// rhs).NewTerm(coeff, var) and m.Objective().NewTerm(coeff, var) shapes
// used throughout this package all come from that file.
package model

import (
	"github.com/google/uuid"
	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// ZKey indexes the per-scenario activation variable z_{j,s}.
type ZKey struct {
	Station  problemdata.StationIndex
	Scenario int
}

// Weights bundles the objective coefficients spec §4.6 names. Every
// variant uses a subset.
type Weights struct {
	Alpha               float64 // in-vehicle time weight (pooling/clustering assignment cost)
	Gamma               float64 // vehicle-routing weight (pooling flow cost + pooling savings)
	CorridorWeight      float64 // corridor variants
	InVehicleTimeWeight float64 // transportation variant
	ActivationCost      float64 // transportation variant, per-anchor activation
}

// Base is the shared first-stage/activation skeleton embedded by every
// variant's result type.
type Base struct {
	Variant          mapping.Variant
	RunID            uuid.UUID
	Model            mip.Model
	Y                model.MultiMap[mip.Bool, problemdata.StationIndex]
	Z                model.MultiMap[mip.Bool, ZKey]
	VarCounts        map[string]int
	ConstraintCounts map[string]int
}

// buildSkeleton creates y_j, z_{j,s}, the build-count constraint (exact or
// at-most per params.BuildExact), the per-scenario activation-count
// constraint, and the linking constraints z_{j,s} <= y_j.
func buildSkeleton(m mip.Model, pd *problemdata.ProblemData, params mapping.Params, variant mapping.Variant) (*Base, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	indices := pd.AllStationIndices()
	scenarioCount := pd.ScenarioCount()

	yVars := model.NewMultiMap(
		func(...problemdata.StationIndex) mip.Bool { return m.NewBool() },
		indices,
	)

	var zKeys []ZKey
	for _, j := range indices {
		for s := 1; s <= scenarioCount; s++ {
			zKeys = append(zKeys, ZKey{Station: j, Scenario: s})
		}
	}
	zVars := model.NewMultiMap(
		func(...ZKey) mip.Bool { return m.NewBool() },
		zKeys,
	)

	varCounts := map[string]int{"y": len(indices), "z": len(zKeys)}
	constraintCounts := map[string]int{}

	// Σ_j y_j = L (or <= L)
	sense := mip.Equal
	if !params.BuildExact {
		sense = mip.LessThanOrEqual
	}
	buildCount := m.NewConstraint(sense, float64(params.L))
	for _, j := range indices {
		buildCount.NewTerm(1.0, yVars.Get(j))
	}
	constraintCounts["build_count"] = 1

	// Σ_j z_{j,s} = K ∀s
	for s := 1; s <= scenarioCount; s++ {
		c := m.NewConstraint(mip.Equal, float64(params.K))
		for _, j := range indices {
			c.NewTerm(1.0, zVars.Get(ZKey{Station: j, Scenario: s}))
		}
	}
	constraintCounts["activation_count"] = scenarioCount

	// z_{j,s} <= y_j ∀j,s
	for _, j := range indices {
		for s := 1; s <= scenarioCount; s++ {
			c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
			c.NewTerm(1.0, zVars.Get(ZKey{Station: j, Scenario: s}))
			c.NewTerm(-1.0, yVars.Get(j))
		}
	}
	constraintCounts["activation_linking"] = len(indices) * scenarioCount

	m.Objective().SetMinimize()

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	return &Base{
		Variant:          variant,
		RunID:            id,
		Model:            m,
		Y:                yVars,
		Z:                zVars,
		VarCounts:        varCounts,
		ConstraintCounts: constraintCounts,
	}, nil
}

// linkActivation adds the constraints tying an assignment-type variable x
// to the activation variables of its two stations, per spec §4.6.1
// ("Activation linking"): tight (two constraints) by default, or the
// looser single-constraint form when params.LooseLinking is set (spec §9
// Open Question, default tight "for better LP relaxation").
func linkActivation(m mip.Model, x mip.Bool, zj, zk mip.Bool, loose bool, constraintCounts map[string]int) {
	if loose {
		c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
		c.NewTerm(2.0, x)
		c.NewTerm(-1.0, zj)
		c.NewTerm(-1.0, zk)
		constraintCounts["activation_link_x_loose"]++
		return
	}
	c1 := m.NewConstraint(mip.LessThanOrEqual, 0.0)
	c1.NewTerm(1.0, x)
	c1.NewTerm(-1.0, zj)
	c2 := m.NewConstraint(mip.LessThanOrEqual, 0.0)
	c2.NewTerm(1.0, x)
	c2.NewTerm(-1.0, zk)
	constraintCounts["activation_link_x_tight"] += 2
}
