package model

import (
	"sort"

	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// AssignKey indexes x_{s,t,(o,d),j,k}.
type AssignKey struct {
	Scenario, TimeID int
	OriginID, DestID int64
	Pickup, Dropoff  problemdata.StationIndex
}

// FlowKey indexes f_{s,t,j,k}.
type FlowKey struct {
	Scenario, TimeID int
	J, K             problemdata.StationIndex
}

// DetourKey indexes u_{s,t,i} / v_{s,t,i}, where i is a position into the
// per-bucket feasible same-source/same-destination list.
type DetourKey struct {
	Scenario, TimeID int
	Index            int
}

// PoolingResult is the build result of the time-bucketed single-detour
// model (spec §4.6.1).
type PoolingResult struct {
	Base
	Mapping *mapping.PoolingMapping
	X       model.MultiMap[mip.Bool, AssignKey]
	F       model.MultiMap[mip.Bool, FlowKey]
	U       model.MultiMap[mip.Bool, DetourKey]
	V       model.MultiMap[mip.Bool, DetourKey]
}

// BuildPoolingModel assembles the time-bucketed single-detour MIP.
func BuildPoolingModel(pd *problemdata.ProblemData, pm *mapping.PoolingMapping, weights Weights) (*PoolingResult, error) {
	m := mip.NewModel()
	base, err := buildSkeleton(m, pd, pm.Params, mapping.VariantPooling)
	if err != nil {
		return nil, err
	}

	var assignKeys []AssignKey
	assignsByFlow := make(map[FlowKey][]AssignKey)

	for _, bucket := range pm.Buckets() {
		for _, od := range pm.Omega[bucket.Scenario][bucket.TimeID] {
			pairs := mapping.PairsForOD(pd, od, pm.FeasiblePairs)
			for _, pair := range pairs {
				ak := AssignKey{
					Scenario: bucket.Scenario, TimeID: bucket.TimeID,
					OriginID: od.OriginID, DestID: od.DestinationID,
					Pickup: pair.Pickup, Dropoff: pair.Dropoff,
				}
				assignKeys = append(assignKeys, ak)
				fk := FlowKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, J: pair.Pickup, K: pair.Dropoff}
				assignsByFlow[fk] = append(assignsByFlow[fk], ak)
			}
		}
	}

	xVars := model.NewMultiMap(func(...AssignKey) mip.Bool { return m.NewBool() }, assignKeys)

	var flowKeys []FlowKey
	for fk := range assignsByFlow {
		flowKeys = append(flowKeys, fk)
	}
	sort.Slice(flowKeys, func(i, j int) bool { return flowKeyLess(flowKeys[i], flowKeys[j]) })
	fVars := model.NewMultiMap(func(...FlowKey) mip.Bool { return m.NewBool() }, flowKeys)

	base.VarCounts["x"] = len(assignKeys)
	base.VarCounts["f"] = len(flowKeys)

	// Unique assignment: Σ_{(j,k)} x = 1 ∀(s,t,od)
	type odBucket struct {
		mapping.BucketKey
		od mapping.ODPair
	}
	assignsByODBucket := make(map[odBucket][]AssignKey)
	var odBucketOrder []odBucket
	for _, ak := range assignKeys {
		key := odBucket{BucketKey: mapping.BucketKey{Scenario: ak.Scenario, TimeID: ak.TimeID}, od: mapping.ODPair{OriginID: ak.OriginID, DestinationID: ak.DestID}}
		if _, ok := assignsByODBucket[key]; !ok {
			odBucketOrder = append(odBucketOrder, key)
		}
		assignsByODBucket[key] = append(assignsByODBucket[key], ak)
	}
	for _, key := range odBucketOrder {
		aks := assignsByODBucket[key]
		c := m.NewConstraint(mip.Equal, 1.0)
		for _, ak := range aks {
			c.NewTerm(1.0, xVars.Get(ak))
		}
		base.ConstraintCounts["unique_assignment"]++
	}

	// Activation linking + flow-lower (x <= f)
	for _, ak := range assignKeys {
		zj := base.Z.Get(ZKey{Station: ak.Pickup, Scenario: ak.Scenario})
		zk := base.Z.Get(ZKey{Station: ak.Dropoff, Scenario: ak.Scenario})
		linkActivation(m, xVars.Get(ak), zj, zk, pm.Params.LooseLinking, base.ConstraintCounts)

		fk := FlowKey{Scenario: ak.Scenario, TimeID: ak.TimeID, J: ak.Pickup, K: ak.Dropoff}
		c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
		c.NewTerm(1.0, xVars.Get(ak))
		c.NewTerm(-1.0, fVars.Get(fk))
		base.ConstraintCounts["flow_lower"]++
	}

	// Flow-upper: f <= Σ_{(o,d)} x
	for _, fk := range flowKeys {
		aks := assignsByFlow[fk]
		c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
		c.NewTerm(1.0, fVars.Get(fk))
		for _, ak := range aks {
			c.NewTerm(-1.0, xVars.Get(ak))
		}
		base.ConstraintCounts["flow_upper"]++
	}

	// Same-source / same-destination detour variables + constraints.
	var uKeys, vKeys []DetourKey
	for _, bucket := range pm.Buckets() {
		for _, i := range pm.FeasibleSameSource[bucket] {
			uKeys = append(uKeys, DetourKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, Index: i})
		}
		for _, i := range pm.FeasibleSameDest[bucket] {
			vKeys = append(vKeys, DetourKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, Index: i})
		}
	}
	uVars := model.NewMultiMap(func(...DetourKey) mip.Bool { return m.NewBool() }, uKeys)
	vVars := model.NewMultiMap(func(...DetourKey) mip.Bool { return m.NewBool() }, vKeys)
	base.VarCounts["u_same_source"] = len(uKeys)
	base.VarCounts["v_same_dest"] = len(vKeys)

	odSumConstraint := func(scenario, timeID int, j, k problemdata.StationIndex, rhsVar mip.Bool) {
		c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
		c.NewTerm(-1.0, rhsVar)
		fk := FlowKey{Scenario: scenario, TimeID: timeID, J: j, K: k}
		for _, ak := range assignsByFlow[fk] {
			c.NewTerm(1.0, xVars.Get(ak))
		}
	}

	for _, uk := range uKeys {
		triple := pm.Detour.SameSource[uk.Index]
		u := uVars.Get(uk)
		odSumConstraint(uk.Scenario, uk.TimeID, triple.J, triple.K, u)
		odSumConstraint(uk.Scenario, uk.TimeID, triple.J, triple.L, u)
		base.ConstraintCounts["same_source_detour"] += 2
	}
	for _, vk := range vKeys {
		quad := pm.Detour.SameDest[vk.Index]
		v := vVars.Get(vk)
		odSumConstraint(vk.Scenario, vk.TimeID, quad.J, quad.L, v)
		odSumConstraint(vk.Scenario, vk.TimeID+quad.DeltaT, quad.K, quad.L, v)
		base.ConstraintCounts["same_dest_detour"] += 2
	}

	// Objective.
	for _, ak := range assignKeys {
		q := pm.Q[ak.Scenario][ak.TimeID][mapping.ODPair{OriginID: ak.OriginID, DestinationID: ak.DestID}]
		walkO, err := pd.WalkingCost(ak.OriginID, pd.StationID(ak.Pickup))
		if err != nil {
			return nil, err
		}
		walkD, err := pd.WalkingCost(pd.StationID(ak.Dropoff), ak.DestID)
		if err != nil {
			return nil, err
		}
		routeJK, err := pd.RoutingCostByIndex(ak.Pickup, ak.Dropoff)
		if err != nil {
			return nil, err
		}
		coeff := float64(q) * (walkO + walkD + weights.Alpha*routeJK)
		m.Objective().NewTerm(coeff, xVars.Get(ak))
	}
	for _, fk := range flowKeys {
		r, err := pd.RoutingCostByIndex(fk.J, fk.K)
		if err != nil {
			return nil, err
		}
		m.Objective().NewTerm(weights.Gamma*r, fVars.Get(fk))
	}
	for _, uk := range uKeys {
		triple := pm.Detour.SameSource[uk.Index]
		rjl, err := pd.RoutingCostByIndex(triple.J, triple.L)
		if err != nil {
			return nil, err
		}
		rkl, err := pd.RoutingCostByIndex(triple.K, triple.L)
		if err != nil {
			return nil, err
		}
		saving := rjl - rkl
		if saving < 0 {
			saving = 0
		}
		m.Objective().NewTerm(-weights.Gamma*saving, uVars.Get(uk))
	}
	for _, vk := range vKeys {
		quad := pm.Detour.SameDest[vk.Index]
		rjl, err := pd.RoutingCostByIndex(quad.J, quad.L)
		if err != nil {
			return nil, err
		}
		rjk, err := pd.RoutingCostByIndex(quad.J, quad.K)
		if err != nil {
			return nil, err
		}
		saving := rjl - rjk
		if saving < 0 {
			saving = 0
		}
		m.Objective().NewTerm(-weights.Gamma*saving, vVars.Get(vk))
	}

	return &PoolingResult{Base: *base, Mapping: pm, X: xVars, F: fVars, U: uVars, V: vVars}, nil
}

func flowKeyLess(a, b FlowKey) bool {
	if a.Scenario != b.Scenario {
		return a.Scenario < b.Scenario
	}
	if a.TimeID != b.TimeID {
		return a.TimeID < b.TimeID
	}
	if a.J != b.J {
		return a.J < b.J
	}
	return a.K < b.K
}
