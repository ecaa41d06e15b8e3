package solution

import (
	"sort"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

// AssignmentRow is one row of the "Assignment" artifact.
type AssignmentRow struct {
	Scenario     int    `json:"scenario"`
	TimeID       *int   `json:"time_id,omitempty"`
	OriginID     int64  `json:"origin_id"`
	DestID       int64  `json:"dest_id"`
	PickupIndex  int    `json:"pickup_index"`
	DropoffIndex int    `json:"dropoff_index"`
	PickupID     int64  `json:"pickup_id"`
	DropoffID    int64  `json:"dropoff_id"`
	Value        float64 `json:"value"`
}

// FlowRow is one row of the pooling-variant "Flow" artifact.
type FlowRow struct {
	Scenario int     `json:"scenario"`
	TimeID   int     `json:"time_id"`
	JIndex   int     `json:"j_index"`
	KIndex   int     `json:"k_index"`
	JID      int64   `json:"j_id"`
	KID      int64   `json:"k_id"`
	Value    float64 `json:"value"`
}

// SameSourceRow is one row of the "Same-source pooling" artifact.
type SameSourceRow struct {
	Scenario    int     `json:"scenario"`
	TimeID      int     `json:"time_id"`
	TripleIndex int     `json:"triple_index"`
	JID         int64   `json:"j_id"`
	KID         int64   `json:"k_id"`
	LID         int64   `json:"l_id"`
	Value       float64 `json:"value"`
}

// SameDestRow is one row of the "Same-dest pooling" artifact.
type SameDestRow struct {
	Scenario       int     `json:"scenario"`
	TimeID         int     `json:"time_id"`
	QuadrupleIndex int     `json:"quadruple_index"`
	JID            int64   `json:"j_id"`
	KID            int64   `json:"k_id"`
	LID            int64   `json:"l_id"`
	TimeDelta      int     `json:"time_delta"`
	Value          float64 `json:"value"`
}

// PoolingArtifacts bundles every output artifact of the time-bucketed
// single-detour model, plus per-request annotations.
type PoolingArtifacts struct {
	StationSelection  []StationSelectionRow
	ScenarioActivation []ScenarioActivationRow
	Assignment        []AssignmentRow
	Flow              []FlowRow
	SameSource        []SameSourceRow
	SameDest          []SameDestRow
	Requests          []RequestAssignment
	Metadata          Metadata
}

// ExtractPooling reads every variable family of a solved PoolingResult
// and emits the full artifact set.
func ExtractPooling(pd *problemdata.ProblemData, pm *mapping.PoolingMapping, res *model.PoolingResult, sol solverx.Result) (*PoolingArtifacts, error) {
	art := &PoolingArtifacts{
		StationSelection:   ExtractStationSelection(pd, res.Base, sol),
		ScenarioActivation: ExtractScenarioActivation(pd, res.Base, sol),
		Metadata:           BuildMetadata(pd, res.Base, 0, 0, sol),
	}

	// assignedByBucketOD[bucket][od] = chosen (j,k), for per-request lookup.
	assignedByBucketOD := make(map[mapping.BucketKey]map[mapping.ODPair]odAssignment)
	// assignedPair[bucket][(j,k)] = true, to test detour-family membership.
	assignedPair := make(map[mapping.BucketKey]map[mapping.PairIdx]bool)

	for _, bucket := range pm.Buckets() {
		assignedByBucketOD[bucket] = make(map[mapping.ODPair]odAssignment)
		assignedPair[bucket] = make(map[mapping.PairIdx]bool)
		for _, od := range pm.Omega[bucket.Scenario][bucket.TimeID] {
			for _, pair := range mapping.PairsForOD(pd, od, pm.FeasiblePairs) {
				ak := model.AssignKey{
					Scenario: bucket.Scenario, TimeID: bucket.TimeID,
					OriginID: od.OriginID, DestID: od.DestinationID,
					Pickup: pair.Pickup, Dropoff: pair.Dropoff,
				}
				v := sol.Solution.Value(res.X.Get(ak))
				if !active(v) {
					continue
				}
				art.Assignment = append(art.Assignment, AssignmentRow{
					Scenario: bucket.Scenario, TimeID: timeIDPtr(bucket.TimeID),
					OriginID: od.OriginID, DestID: od.DestinationID,
					PickupIndex: int(pair.Pickup), DropoffIndex: int(pair.Dropoff),
					PickupID: pd.StationID(pair.Pickup), DropoffID: pd.StationID(pair.Dropoff),
					Value: v,
				})
				assignedByBucketOD[bucket][od] = odAssignment{od: od, pickup: pair.Pickup, dropoff: pair.Dropoff}
				assignedPair[bucket][pair] = true
			}
		}
	}

	// Flow.
	flowSeen := make(map[model.FlowKey]bool)
	for _, bucket := range pm.Buckets() {
		for _, od := range pm.Omega[bucket.Scenario][bucket.TimeID] {
			for _, pair := range mapping.PairsForOD(pd, od, pm.FeasiblePairs) {
				fk := model.FlowKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, J: pair.Pickup, K: pair.Dropoff}
				if flowSeen[fk] {
					continue
				}
				flowSeen[fk] = true
				v := sol.Solution.Value(res.F.Get(fk))
				if !active(v) {
					continue
				}
				art.Flow = append(art.Flow, FlowRow{
					Scenario: fk.Scenario, TimeID: fk.TimeID,
					JIndex: int(fk.J), KIndex: int(fk.K),
					JID: pd.StationID(fk.J), KID: pd.StationID(fk.K),
					Value: v,
				})
			}
		}
	}
	sort.Slice(art.Flow, func(i, j int) bool {
		a, b := art.Flow[i], art.Flow[j]
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		if a.TimeID != b.TimeID {
			return a.TimeID < b.TimeID
		}
		if a.JIndex != b.JIndex {
			return a.JIndex < b.JIndex
		}
		return a.KIndex < b.KIndex
	})

	// Same-source / same-destination pooling usage, and the index needed
	// for per-request classification.
	activeSameSourceJK := make(map[mapping.BucketKey]map[[2]problemdata.StationIndex]int) // (j,k) -> triple index
	activeSameSourceJL := make(map[mapping.BucketKey]map[[2]problemdata.StationIndex]int) // (j,l) -> triple index
	activeSameDestJL := make(map[mapping.BucketKey]map[[2]problemdata.StationIndex]int)   // (j,l) at t -> quad index
	activeSameDestKL := make(map[mapping.BucketKey]map[[2]problemdata.StationIndex]int)   // (k,l) at t+Δt -> quad index

	for _, bucket := range pm.Buckets() {
		for _, i := range pm.FeasibleSameSource[bucket] {
			dk := model.DetourKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, Index: i}
			v := sol.Solution.Value(res.U.Get(dk))
			if !active(v) {
				continue
			}
			triple := pm.Detour.SameSource[i]
			art.SameSource = append(art.SameSource, SameSourceRow{
				Scenario: bucket.Scenario, TimeID: bucket.TimeID, TripleIndex: i,
				JID: pd.StationID(triple.J), KID: pd.StationID(triple.K), LID: pd.StationID(triple.L),
				Value: v,
			})
			if activeSameSourceJK[bucket] == nil {
				activeSameSourceJK[bucket] = make(map[[2]problemdata.StationIndex]int)
				activeSameSourceJL[bucket] = make(map[[2]problemdata.StationIndex]int)
			}
			activeSameSourceJK[bucket][[2]problemdata.StationIndex{triple.J, triple.K}] = i
			activeSameSourceJL[bucket][[2]problemdata.StationIndex{triple.J, triple.L}] = i
		}
		for _, i := range pm.FeasibleSameDest[bucket] {
			dk := model.DetourKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID, Index: i}
			v := sol.Solution.Value(res.V.Get(dk))
			if !active(v) {
				continue
			}
			quad := pm.Detour.SameDest[i]
			art.SameDest = append(art.SameDest, SameDestRow{
				Scenario: bucket.Scenario, TimeID: bucket.TimeID, QuadrupleIndex: i,
				JID: pd.StationID(quad.J), KID: pd.StationID(quad.K), LID: pd.StationID(quad.L),
				TimeDelta: quad.DeltaT, Value: v,
			})
			t2bucket := mapping.BucketKey{Scenario: bucket.Scenario, TimeID: bucket.TimeID + quad.DeltaT}
			if activeSameDestJL[bucket] == nil {
				activeSameDestJL[bucket] = make(map[[2]problemdata.StationIndex]int)
			}
			if activeSameDestKL[t2bucket] == nil {
				activeSameDestKL[t2bucket] = make(map[[2]problemdata.StationIndex]int)
			}
			activeSameDestJL[bucket][[2]problemdata.StationIndex{quad.J, quad.L}] = i
			activeSameDestKL[t2bucket][[2]problemdata.StationIndex{quad.K, quad.L}] = i
		}
	}

	// Per-request annotation.
	for s := 1; s <= pd.ScenarioCount(); s++ {
		sc := pd.Scenario(s)
		if !sc.HasWindow {
			continue
		}
		for _, r := range sc.Requests {
			t := int(r.RequestTime.Sub(sc.Start).Seconds()) / pm.Params.TimeWindowSec
			bucket := mapping.BucketKey{Scenario: s, TimeID: t}
			od := mapping.ODPair{OriginID: r.OriginID, DestinationID: r.DestinationID}
			assigned, ok := assignedByBucketOD[bucket][od]
			if !ok {
				continue
			}
			ra := RequestAssignment{
				RequestID: r.ID, Scenario: s, TimeID: timeIDPtr(t),
				OriginID: r.OriginID, DestID: r.DestinationID,
				PickupID: pd.StationID(assigned.pickup), DropoffID: pd.StationID(assigned.dropoff),
				WalkOrigin: walkingOrZero(pd, r.OriginID, pd.StationID(assigned.pickup)),
				WalkDest:   walkingOrZero(pd, pd.StationID(assigned.dropoff), r.DestinationID),
			}
			direct := routingOrZero(pd, assigned.pickup, assigned.dropoff)
			ra.DirectInVehicleTime = direct
			ra.ActualInVehicleTime = direct

			jk := [2]problemdata.StationIndex{assigned.pickup, assigned.dropoff}
			if i, ok := activeSameSourceJK[bucket][jk]; ok {
				ra.Pooled, ra.PoolingRole = true, "primary"
				_ = i
			} else if i, ok := activeSameSourceJL[bucket][jk]; ok {
				triple := pm.Detour.SameSource[i]
				ra.Pooled, ra.PoolingRole = true, "secondary"
				ra.ActualInVehicleTime = routingOrZero(pd, triple.J, triple.K) + routingOrZero(pd, triple.K, triple.L)
				ra.DetourDelta = ra.ActualInVehicleTime - routingOrZero(pd, triple.J, triple.L)
			} else if i, ok := activeSameDestJL[bucket][jk]; ok {
				quad := pm.Detour.SameDest[i]
				ra.Pooled, ra.PoolingRole = true, "primary"
				ra.ActualInVehicleTime = routingOrZero(pd, quad.J, quad.K) + routingOrZero(pd, quad.K, quad.L)
				ra.DetourDelta = ra.ActualInVehicleTime - routingOrZero(pd, quad.J, quad.L)
			} else if i, ok := activeSameDestKL[bucket][jk]; ok {
				ra.Pooled, ra.PoolingRole = true, "secondary"
				_ = i
			}

			art.Requests = append(art.Requests, ra)
		}
	}

	return art, nil
}

func timeIDPtr(t int) *int {
	v := t
	return &v
}
