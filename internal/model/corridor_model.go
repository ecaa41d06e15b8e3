package model

import (
	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// AlphaKey indexes the zone-activation variable α_{a,s} (z-variant only).
type AlphaKey struct {
	Cluster  int
	Scenario int
}

// CorridorUseKey indexes the corridor-usage variable f^c_{g,s}.
type CorridorUseKey struct {
	CorridorIndex int
	Scenario      int
}

// CorridorResult is the build result of either corridor coupling (spec
// §4.6.3): the clustering assignment superstructure plus corridor usage.
type CorridorResult struct {
	Base
	Mapping  *mapping.CorridorMapping
	UseX     bool // true: x-variant, false: z-variant
	X        model.MultiMap[mip.Bool, ClusterAssignKey]
	Alpha    model.MultiMap[mip.Bool, AlphaKey] // nil in the x-variant
	Corridor model.MultiMap[mip.Bool, CorridorUseKey]
}

// BuildCorridorModel assembles the corridor-coupled clustering MIP. useX
// selects the x-variant (corridors coupled directly to assignments);
// otherwise the z-variant couples corridors to zone activations.
func BuildCorridorModel(pd *problemdata.ProblemData, cm *mapping.CorridorMapping, weights Weights, useX bool) (*CorridorResult, error) {
	variant := mapping.VariantCorridorZ
	if useX {
		variant = mapping.VariantCorridorX
	}

	m := mip.NewModel()
	base, err := buildSkeleton(m, pd, cm.Params, variant)
	if err != nil {
		return nil, err
	}

	var assignKeys []ClusterAssignKey
	for s := 1; s <= pd.ScenarioCount(); s++ {
		for _, od := range cm.Omega[s] {
			for _, pair := range mapping.PairsForOD(pd, od, cm.FeasiblePairs) {
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
	for _, key := range odOrder {
		aks := byODScenario[key]
		c := m.NewConstraint(mip.Equal, 1.0)
		for _, ak := range aks {
			c.NewTerm(1.0, xVars.Get(ak))
		}
		base.ConstraintCounts["unique_assignment"]++
	}
	for _, ak := range assignKeys {
		zj := base.Z.Get(ZKey{Station: ak.Pickup, Scenario: ak.Scenario})
		zk := base.Z.Get(ZKey{Station: ak.Dropoff, Scenario: ak.Scenario})
		linkActivation(m, xVars.Get(ak), zj, zk, false, base.ConstraintCounts)
	}

	numClusters := len(cm.Clustering.Clusters)
	scenarioCount := pd.ScenarioCount()

	var corridorKeys []CorridorUseKey
	for gi := range cm.Corridors {
		for s := 1; s <= scenarioCount; s++ {
			corridorKeys = append(corridorKeys, CorridorUseKey{CorridorIndex: gi, Scenario: s})
		}
	}
	corridorVars := model.NewMultiMap(func(...CorridorUseKey) mip.Bool { return m.NewBool() }, corridorKeys)
	base.VarCounts["corridor_use"] = len(corridorKeys)

	result := &CorridorResult{Base: *base, Mapping: cm, UseX: useX, X: xVars, Corridor: corridorVars}

	if !useX {
		var alphaKeys []AlphaKey
		for a := 1; a <= numClusters; a++ {
			for s := 1; s <= scenarioCount; s++ {
				alphaKeys = append(alphaKeys, AlphaKey{Cluster: a, Scenario: s})
			}
		}
		alphaVars := model.NewMultiMap(func(...AlphaKey) mip.Bool { return m.NewBool() }, alphaKeys)
		base.VarCounts["alpha"] = len(alphaKeys)
		result.Alpha = alphaVars

		// |C_a| * alpha_{a,s} >= Σ_{i in C_a} z_{i,s}
		for a := 1; a <= numClusters; a++ {
			members := cm.Members[a]
			for s := 1; s <= scenarioCount; s++ {
				c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
				c.NewTerm(float64(len(members)), alphaVars.Get(AlphaKey{Cluster: a, Scenario: s}))
				for _, i := range members {
					c.NewTerm(-1.0, base.Z.Get(ZKey{Station: i, Scenario: s}))
				}
				base.ConstraintCounts["corridor_zone_activation"]++
			}
		}

		for gi, corridor := range cm.Corridors {
			for s := 1; s <= scenarioCount; s++ {
				fg := corridorVars.Get(CorridorUseKey{CorridorIndex: gi, Scenario: s})
				if corridor.A == corridor.B {
					c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
					c.NewTerm(1.0, fg)
					c.NewTerm(-1.0, alphaVars.Get(AlphaKey{Cluster: corridor.A, Scenario: s}))
				} else {
					c := m.NewConstraint(mip.GreaterThanOrEqual, -1.0)
					c.NewTerm(1.0, fg)
					c.NewTerm(-1.0, alphaVars.Get(AlphaKey{Cluster: corridor.A, Scenario: s}))
					c.NewTerm(-1.0, alphaVars.Get(AlphaKey{Cluster: corridor.B, Scenario: s}))
				}
				base.ConstraintCounts["corridor_activation_z"]++
			}
		}
	} else {
		assignsByCorridorScenario := make(map[CorridorUseKey][]ClusterAssignKey)
		var corridorOrder []CorridorUseKey
		for _, ak := range assignKeys {
			a := cm.Clustering.LabelOf(ak.Pickup)
			b := cm.Clustering.LabelOf(ak.Dropoff)
			gi := cm.CorridorIndex(a, b)
			key := CorridorUseKey{CorridorIndex: gi, Scenario: ak.Scenario}
			if _, ok := assignsByCorridorScenario[key]; !ok {
				corridorOrder = append(corridorOrder, key)
			}
			assignsByCorridorScenario[key] = append(assignsByCorridorScenario[key], ak)
		}
		for _, key := range corridorOrder {
			aks := assignsByCorridorScenario[key]
			fg := corridorVars.Get(key)
			for _, ak := range aks {
				c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
				c.NewTerm(1.0, fg)
				c.NewTerm(-1.0, xVars.Get(ak))
				base.ConstraintCounts["corridor_activation_x"]++
			}
		}
	}

	// Objective: clustering assignment cost...
	for _, ak := range assignKeys {
		q := cm.Q[ak.Scenario][mapping.ODPair{OriginID: ak.OriginID, DestinationID: ak.DestID}]
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
	// ...plus corridor_weight * corridor_cost(g) * f^c_{g,s}.
	for gi, corridor := range cm.Corridors {
		for s := 1; s <= scenarioCount; s++ {
			key := CorridorUseKey{CorridorIndex: gi, Scenario: s}
			m.Objective().NewTerm(weights.CorridorWeight*corridor.Cost, corridorVars.Get(key))
		}
	}

	return result, nil
}
