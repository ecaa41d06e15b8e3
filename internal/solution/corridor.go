package solution

import (
	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

// CorridorUsageRow is one row of the "Corridor usage" artifact.
type CorridorUsageRow struct {
	CorridorIndex int     `json:"corridor_index"`
	ClusterA      int     `json:"cluster_a"`
	ClusterB      int     `json:"cluster_b"`
	Scenario      int     `json:"scenario"`
	Value         float64 `json:"value"`
}

// CorridorArtifacts bundles the clustering-assignment artifacts plus
// corridor usage (spec §4.6.3).
type CorridorArtifacts struct {
	StationSelection   []StationSelectionRow
	ScenarioActivation []ScenarioActivationRow
	Assignment         []AssignmentRow
	CorridorUsage      []CorridorUsageRow
	Requests           []RequestAssignment
	Metadata           Metadata
}

// ExtractCorridor reads a solved CorridorResult (either variant).
func ExtractCorridor(pd *problemdata.ProblemData, cm *mapping.CorridorMapping, res *model.CorridorResult, sol solverx.Result) (*CorridorArtifacts, error) {
	numClusters := len(cm.Clustering.Clusters)
	art := &CorridorArtifacts{
		StationSelection:   ExtractStationSelection(pd, res.Base, sol),
		ScenarioActivation: ExtractScenarioActivation(pd, res.Base, sol),
		Metadata:           BuildMetadata(pd, res.Base, numClusters, 0, sol),
	}

	assignedByScenarioOD := make(map[int]map[mapping.ODPair]odAssignment)
	for s := 1; s <= pd.ScenarioCount(); s++ {
		assignedByScenarioOD[s] = make(map[mapping.ODPair]odAssignment)
		for _, od := range cm.Omega[s] {
			for _, pair := range mapping.PairsForOD(pd, od, cm.FeasiblePairs) {
				ak := model.ClusterAssignKey{
					Scenario: s, OriginID: od.OriginID, DestID: od.DestinationID,
					Pickup: pair.Pickup, Dropoff: pair.Dropoff,
				}
				v := sol.Solution.Value(res.X.Get(ak))
				if !active(v) {
					continue
				}
				art.Assignment = append(art.Assignment, AssignmentRow{
					Scenario: s, OriginID: od.OriginID, DestID: od.DestinationID,
					PickupIndex: int(pair.Pickup), DropoffIndex: int(pair.Dropoff),
					PickupID: pd.StationID(pair.Pickup), DropoffID: pd.StationID(pair.Dropoff),
					Value: v,
				})
				assignedByScenarioOD[s][od] = odAssignment{od: od, pickup: pair.Pickup, dropoff: pair.Dropoff}
			}
		}
	}

	for gi, corridor := range cm.Corridors {
		for s := 1; s <= pd.ScenarioCount(); s++ {
			v := sol.Solution.Value(res.Corridor.Get(model.CorridorUseKey{CorridorIndex: gi, Scenario: s}))
			if !active(v) {
				continue
			}
			art.CorridorUsage = append(art.CorridorUsage, CorridorUsageRow{
				CorridorIndex: gi, ClusterA: corridor.A, ClusterB: corridor.B, Scenario: s, Value: v,
			})
		}
	}

	for s := 1; s <= pd.ScenarioCount(); s++ {
		sc := pd.Scenario(s)
		for _, r := range sc.Requests {
			od := mapping.ODPair{OriginID: r.OriginID, DestinationID: r.DestinationID}
			assigned, ok := assignedByScenarioOD[s][od]
			if !ok {
				continue
			}
			ra := RequestAssignment{
				RequestID: r.ID, Scenario: s,
				OriginID: r.OriginID, DestID: r.DestinationID,
				PickupID: pd.StationID(assigned.pickup), DropoffID: pd.StationID(assigned.dropoff),
				WalkOrigin: walkingOrZero(pd, r.OriginID, pd.StationID(assigned.pickup)),
				WalkDest:   walkingOrZero(pd, pd.StationID(assigned.dropoff), r.DestinationID),
			}
			if pd.HasRoutingCosts() {
				direct := routingOrZero(pd, assigned.pickup, assigned.dropoff)
				ra.DirectInVehicleTime = direct
				ra.ActualInVehicleTime = direct
			}
			art.Requests = append(art.Requests, ra)
		}
	}

	return art, nil
}
