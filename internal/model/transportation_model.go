package model

import (
	"sort"

	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// PickupAssignKey indexes x^p_{g,s,(i,j)}.
type PickupAssignKey struct {
	Anchor, Scenario int
	OriginID         int64
	Pickup           problemdata.StationIndex
}

// DropoffAssignKey indexes x^d_{g,s,(i,k)}.
type DropoffAssignKey struct {
	Anchor, Scenario int
	DestID           int64
	Dropoff          problemdata.StationIndex
}

// StationCountKey indexes p_{g,s,j} / d_{g,s,k}.
type StationCountKey struct {
	Anchor, Scenario int
	Station          problemdata.StationIndex
}

// AnchorFlowKey indexes f^t_{g,s,(j,k)}.
type AnchorFlowKey struct {
	Anchor, Scenario int
	J, K             problemdata.StationIndex
}

// AnchorScenarioKey indexes u^a_{g,s}.
type AnchorScenarioKey struct {
	Anchor, Scenario int
}

// TransportationResult is the build result of the transportation model
// (spec §4.6.4).
type TransportationResult struct {
	Base
	Mapping *mapping.TransportationMapping
	Xp      model.MultiMap[mip.Bool, PickupAssignKey]
	Xd      model.MultiMap[mip.Bool, DropoffAssignKey]
	P       model.MultiMap[mip.Int, StationCountKey]
	D       model.MultiMap[mip.Int, StationCountKey]
	F       model.MultiMap[mip.Int, AnchorFlowKey]
	U       model.MultiMap[mip.Bool, AnchorScenarioKey]
}

// sortedDemandScenarios returns anchor.Demand's scenario keys in ascending
// order. anchor.Demand is a map, and map iteration order is randomized per
// run; every variable/constraint family built from it must instead walk a
// fixed order so that two builds over identical problem data produce
// identical solver inputs (spec §5).
func sortedDemandScenarios(anchor mapping.Anchor) []int {
	scenarios := make([]int, 0, len(anchor.Demand))
	for s := range anchor.Demand {
		scenarios = append(scenarios, s)
	}
	sort.Ints(scenarios)
	return scenarios
}

// BuildTransportationModel assembles the anchor-based transportation MIP.
func BuildTransportationModel(pd *problemdata.ProblemData, tm *mapping.TransportationMapping, params mapping.Params, weights Weights) (*TransportationResult, error) {
	m := mip.NewModel()
	base, err := buildSkeleton(m, pd, params, mapping.VariantTransportation)
	if err != nil {
		return nil, err
	}

	var pickupKeys []PickupAssignKey
	var dropoffKeys []DropoffAssignKey
	var countKeysP, countKeysD []StationCountKey
	var flowKeys []AnchorFlowKey
	var anchorScenarioKeys []AnchorScenarioKey

	anchorJ := make([][]problemdata.StationIndex, len(tm.Anchors))
	anchorK := make([][]problemdata.StationIndex, len(tm.Anchors))

	for gi, anchor := range tm.Anchors {
		seenJ := make(map[problemdata.StationIndex]bool)
		seenK := make(map[problemdata.StationIndex]bool)
		for _, pair := range anchor.Pairs {
			if !seenJ[pair.Pickup] {
				seenJ[pair.Pickup] = true
				anchorJ[gi] = append(anchorJ[gi], pair.Pickup)
			}
			if !seenK[pair.Dropoff] {
				seenK[pair.Dropoff] = true
				anchorK[gi] = append(anchorK[gi], pair.Dropoff)
			}
		}
		sort.Slice(anchorJ[gi], func(i, j int) bool { return anchorJ[gi][i] < anchorJ[gi][j] })
		sort.Slice(anchorK[gi], func(i, j int) bool { return anchorK[gi][i] < anchorK[gi][j] })

		for _, s := range sortedDemandScenarios(anchor) {
			demand := anchor.Demand[s]
			for _, j := range anchorJ[gi] {
				countKeysP = append(countKeysP, StationCountKey{Anchor: gi, Scenario: s, Station: j})
				for _, pc := range demand.Pickups {
					pickupKeys = append(pickupKeys, PickupAssignKey{Anchor: gi, Scenario: s, OriginID: pc.ID, Pickup: j})
				}
			}
			for _, k := range anchorK[gi] {
				countKeysD = append(countKeysD, StationCountKey{Anchor: gi, Scenario: s, Station: k})
				for _, dc := range demand.Dropoffs {
					dropoffKeys = append(dropoffKeys, DropoffAssignKey{Anchor: gi, Scenario: s, DestID: dc.ID, Dropoff: k})
				}
			}
			for _, pair := range anchor.Pairs {
				flowKeys = append(flowKeys, AnchorFlowKey{Anchor: gi, Scenario: s, J: pair.Pickup, K: pair.Dropoff})
			}
			anchorScenarioKeys = append(anchorScenarioKeys, AnchorScenarioKey{Anchor: gi, Scenario: s})
		}
	}

	xpVars := model.NewMultiMap(func(...PickupAssignKey) mip.Bool { return m.NewBool() }, pickupKeys)
	xdVars := model.NewMultiMap(func(...DropoffAssignKey) mip.Bool { return m.NewBool() }, dropoffKeys)

	maxTrips := 0
	for _, anchor := range tm.Anchors {
		for _, demand := range anchor.Demand {
			if demand.TripCount > maxTrips {
				maxTrips = demand.TripCount
			}
		}
	}
	pVars := model.NewMultiMap(func(...StationCountKey) mip.Int { return m.NewInt(0, maxTrips) }, countKeysP)
	dVars := model.NewMultiMap(func(...StationCountKey) mip.Int { return m.NewInt(0, maxTrips) }, countKeysD)
	fVars := model.NewMultiMap(func(...AnchorFlowKey) mip.Int { return m.NewInt(0, maxTrips) }, flowKeys)
	uVars := model.NewMultiMap(func(...AnchorScenarioKey) mip.Bool { return m.NewBool() }, anchorScenarioKeys)

	base.VarCounts["x_pickup"] = len(pickupKeys)
	base.VarCounts["x_dropoff"] = len(dropoffKeys)
	base.VarCounts["p"] = len(countKeysP)
	base.VarCounts["d"] = len(countKeysD)
	base.VarCounts["f_anchor"] = len(flowKeys)
	base.VarCounts["u_anchor"] = len(anchorScenarioKeys)

	result := &TransportationResult{Base: *base, Mapping: tm, Xp: xpVars, Xd: xdVars, P: pVars, D: dVars, F: fVars, U: uVars}

	for gi, anchor := range tm.Anchors {
		for _, s := range sortedDemandScenarios(anchor) {
			demand := anchor.Demand[s]
			// One-hot pickup / drop-off.
			for _, pc := range demand.Pickups {
				c := m.NewConstraint(mip.Equal, 1.0)
				for _, j := range anchorJ[gi] {
					c.NewTerm(1.0, xpVars.Get(PickupAssignKey{Anchor: gi, Scenario: s, OriginID: pc.ID, Pickup: j}))
				}
				result.ConstraintCounts["one_hot_pickup"]++
			}
			for _, dc := range demand.Dropoffs {
				c := m.NewConstraint(mip.Equal, 1.0)
				for _, k := range anchorK[gi] {
					c.NewTerm(1.0, xdVars.Get(DropoffAssignKey{Anchor: gi, Scenario: s, DestID: dc.ID, Dropoff: k}))
				}
				result.ConstraintCounts["one_hot_dropoff"]++
			}

			// Aggregation: p_{g,s,j} = Σ_i m_pick(i)*x^p ; d_{g,s,k} = Σ_i m_drop(i)*x^d
			for _, j := range anchorJ[gi] {
				c := m.NewConstraint(mip.Equal, 0.0)
				c.NewTerm(-1.0, pVars.Get(StationCountKey{Anchor: gi, Scenario: s, Station: j}))
				for _, pc := range demand.Pickups {
					c.NewTerm(float64(pc.Count), xpVars.Get(PickupAssignKey{Anchor: gi, Scenario: s, OriginID: pc.ID, Pickup: j}))
				}
				result.ConstraintCounts["aggregation_pickup"]++
			}
			for _, k := range anchorK[gi] {
				c := m.NewConstraint(mip.Equal, 0.0)
				c.NewTerm(-1.0, dVars.Get(StationCountKey{Anchor: gi, Scenario: s, Station: k}))
				for _, dc := range demand.Dropoffs {
					c.NewTerm(float64(dc.Count), xdVars.Get(DropoffAssignKey{Anchor: gi, Scenario: s, DestID: dc.ID, Dropoff: k}))
				}
				result.ConstraintCounts["aggregation_dropoff"]++
			}

			// Flow conservation.
			for _, j := range anchorJ[gi] {
				c := m.NewConstraint(mip.Equal, 0.0)
				c.NewTerm(-1.0, pVars.Get(StationCountKey{Anchor: gi, Scenario: s, Station: j}))
				for _, k := range anchorK[gi] {
					c.NewTerm(1.0, fVars.Get(AnchorFlowKey{Anchor: gi, Scenario: s, J: j, K: k}))
				}
				result.ConstraintCounts["flow_conservation_pickup"]++
			}
			for _, k := range anchorK[gi] {
				c := m.NewConstraint(mip.Equal, 0.0)
				c.NewTerm(-1.0, dVars.Get(StationCountKey{Anchor: gi, Scenario: s, Station: k}))
				for _, j := range anchorJ[gi] {
					c.NewTerm(1.0, fVars.Get(AnchorFlowKey{Anchor: gi, Scenario: s, J: j, K: k}))
				}
				result.ConstraintCounts["flow_conservation_dropoff"]++
			}

			// Flow activation: f^t <= M_{g,s} * u^a
			u := uVars.Get(AnchorScenarioKey{Anchor: gi, Scenario: s})
			for _, pair := range anchor.Pairs {
				c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
				c.NewTerm(1.0, fVars.Get(AnchorFlowKey{Anchor: gi, Scenario: s, J: pair.Pickup, K: pair.Dropoff}))
				c.NewTerm(-float64(demand.TripCount), u)
				result.ConstraintCounts["flow_activation"]++
			}

			// Viability: x^p <= z_{j,s} ; x^d <= z_{k,s}
			for _, pc := range demand.Pickups {
				for _, j := range anchorJ[gi] {
					c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
					c.NewTerm(1.0, xpVars.Get(PickupAssignKey{Anchor: gi, Scenario: s, OriginID: pc.ID, Pickup: j}))
					c.NewTerm(-1.0, base.Z.Get(ZKey{Station: j, Scenario: s}))
					result.ConstraintCounts["viability_pickup"]++
				}
			}
			for _, dc := range demand.Dropoffs {
				for _, k := range anchorK[gi] {
					c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
					c.NewTerm(1.0, xdVars.Get(DropoffAssignKey{Anchor: gi, Scenario: s, DestID: dc.ID, Dropoff: k}))
					c.NewTerm(-1.0, base.Z.Get(ZKey{Station: k, Scenario: s}))
					result.ConstraintCounts["viability_dropoff"]++
				}
			}

			// Objective: walking costs.
			for _, j := range anchorJ[gi] {
				for _, pc := range demand.Pickups {
					w, err := pd.WalkingCost(pc.ID, pd.StationID(j))
					if err != nil {
						return nil, err
					}
					m.Objective().NewTerm(float64(pc.Count)*w, xpVars.Get(PickupAssignKey{Anchor: gi, Scenario: s, OriginID: pc.ID, Pickup: j}))
				}
			}
			for _, k := range anchorK[gi] {
				for _, dc := range demand.Dropoffs {
					w, err := pd.WalkingCost(pd.StationID(k), dc.ID)
					if err != nil {
						return nil, err
					}
					m.Objective().NewTerm(float64(dc.Count)*w, xdVars.Get(DropoffAssignKey{Anchor: gi, Scenario: s, DestID: dc.ID, Dropoff: k}))
				}
			}
			// In-vehicle time + activation cost.
			for _, pair := range anchor.Pairs {
				r, err := pd.RoutingCostByIndex(pair.Pickup, pair.Dropoff)
				if err != nil {
					return nil, err
				}
				m.Objective().NewTerm(weights.InVehicleTimeWeight*r, fVars.Get(AnchorFlowKey{Anchor: gi, Scenario: s, J: pair.Pickup, K: pair.Dropoff}))
			}
			m.Objective().NewTerm(weights.ActivationCost, u)
		}
	}

	return result, nil
}
