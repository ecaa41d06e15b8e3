package model

import (
	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// ClusterAssignKey indexes x_{s,(o,d),j,k} in the aggregated model.
type ClusterAssignKey struct {
	Scenario         int
	OriginID, DestID int64
	Pickup, Dropoff  problemdata.StationIndex
}

// ClusteringResult is the build result of the aggregated OD clustering
// model (spec §4.6.2): assignment-only, no flow or pooling superstructure.
type ClusteringResult struct {
	Base
	Mapping *mapping.AggregatedMapping
	X       model.MultiMap[mip.Bool, ClusterAssignKey]
}

// BuildClusteringModel assembles the aggregated OD clustering MIP.
func BuildClusteringModel(pd *problemdata.ProblemData, am *mapping.AggregatedMapping, weights Weights) (*ClusteringResult, error) {
	m := mip.NewModel()
	base, err := buildSkeleton(m, pd, am.Params, mapping.VariantClustering)
	if err != nil {
		return nil, err
	}

	var assignKeys []ClusterAssignKey
	for s := 1; s <= pd.ScenarioCount(); s++ {
		for _, od := range am.Omega[s] {
			for _, pair := range mapping.PairsForOD(pd, od, am.FeasiblePairs) {
				assignKeys = append(assignKeys, ClusterAssignKey{
					Scenario: s, OriginID: od.OriginID, DestID: od.DestinationID,
					Pickup: pair.Pickup, Dropoff: pair.Dropoff,
				})
			}
		}
	}
	xVars := model.NewMultiMap(func(...ClusterAssignKey) mip.Bool { return m.NewBool() }, assignKeys)
	base.VarCounts["x"] = len(assignKeys)

	type odScenario struct {
		scenario int
		od       mapping.ODPair
	}
	byODScenario := make(map[odScenario][]ClusterAssignKey)
	var odOrder []odScenario
	for _, ak := range assignKeys {
		key := odScenario{scenario: ak.Scenario, od: mapping.ODPair{OriginID: ak.OriginID, DestinationID: ak.DestID}}
		if _, ok := byODScenario[key]; !ok {
			odOrder = append(odOrder, key)
		}
		byODScenario[key] = append(byODScenario[key], ak)
	}

	// Unique assignment: Σ_{(j,k)} x = 1 ∀(s,od)
	for _, key := range odOrder {
		aks := byODScenario[key]
		c := m.NewConstraint(mip.Equal, 1.0)
		for _, ak := range aks {
			c.NewTerm(1.0, xVars.Get(ak))
		}
		base.ConstraintCounts["unique_assignment"]++
	}

	// Tight activation linking only (spec §4.6.2: "tight activation constraints only").
	for _, ak := range assignKeys {
		zj := base.Z.Get(ZKey{Station: ak.Pickup, Scenario: ak.Scenario})
		zk := base.Z.Get(ZKey{Station: ak.Dropoff, Scenario: ak.Scenario})
		linkActivation(m, xVars.Get(ak), zj, zk, false, base.ConstraintCounts)
	}

	// Objective: Q[s][(o,d)] * (walking(o,id(j)) + walking(id(k),d) + alpha*routing(id(j),id(k))) * x;
	// the routing term is left out when no routing cost matrix was supplied.
	for _, ak := range assignKeys {
		q := am.Q[ak.Scenario][mapping.ODPair{OriginID: ak.OriginID, DestinationID: ak.DestID}]
		walkO, err := pd.WalkingCost(ak.OriginID, pd.StationID(ak.Pickup))
		if err != nil {
			return nil, err
		}
		walkD, err := pd.WalkingCost(pd.StationID(ak.Dropoff), ak.DestID)
		if err != nil {
			return nil, err
		}
		coeff := float64(q) * (walkO + walkD)
		if pd.HasRoutingCosts() {
			r, err := pd.RoutingCostByIndex(ak.Pickup, ak.Dropoff)
			if err != nil {
				return nil, err
			}
			coeff += float64(q) * weights.Alpha * r
		}
		m.Objective().NewTerm(coeff, xVars.Get(ak))
	}

	return &ClusteringResult{Base: *base, Mapping: am, X: xVars}, nil
}
