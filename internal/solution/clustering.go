package solution

import (
	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

// ClusteringArtifacts bundles the output artifacts of the aggregated OD
// clustering model (spec §4.6.2): no time dimension, no flow/pooling
// families.
type ClusteringArtifacts struct {
	StationSelection   []StationSelectionRow
	ScenarioActivation []ScenarioActivationRow
	Assignment         []AssignmentRow
	Requests           []RequestAssignment
	Metadata           Metadata
}

// ExtractClustering reads a solved ClusteringResult.
func ExtractClustering(pd *problemdata.ProblemData, am *mapping.AggregatedMapping, res *model.ClusteringResult, sol solverx.Result) (*ClusteringArtifacts, error) {
	art := &ClusteringArtifacts{
		StationSelection:   ExtractStationSelection(pd, res.Base, sol),
		ScenarioActivation: ExtractScenarioActivation(pd, res.Base, sol),
		Metadata:           BuildMetadata(pd, res.Base, 0, 0, sol),
	}

	assignedByScenarioOD := make(map[int]map[mapping.ODPair]odAssignment)
	for s := 1; s <= pd.ScenarioCount(); s++ {
		assignedByScenarioOD[s] = make(map[mapping.ODPair]odAssignment)
		for _, od := range am.Omega[s] {
			for _, pair := range mapping.PairsForOD(pd, od, am.FeasiblePairs) {
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
