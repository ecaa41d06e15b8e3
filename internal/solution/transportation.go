package solution

import (
	"sort"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

// AnchorActivationRow is one row of the anchor "activation" family.
type AnchorActivationRow struct {
	AnchorIndex int     `json:"anchor_index"`
	ClusterA    int     `json:"cluster_a"`
	ClusterB    int     `json:"cluster_b"`
	Scenario    int     `json:"scenario"`
	Value       float64 `json:"value"`
}

// AnchorFlowRow is one row of the anchor "flow" family (f^t).
type AnchorFlowRow struct {
	AnchorIndex int     `json:"anchor_index"`
	Scenario    int     `json:"scenario"`
	JIndex      int     `json:"j_index"`
	KIndex      int     `json:"k_index"`
	JID         int64   `json:"j_id"`
	KID         int64   `json:"k_id"`
	Value       float64 `json:"value"`
}

// AnchorAggregationRow is one row of the anchor "aggregation" family
// (p_{g,s,j} or d_{g,s,k}).
type AnchorAggregationRow struct {
	AnchorIndex int     `json:"anchor_index"`
	Scenario    int     `json:"scenario"`
	Kind        string  `json:"kind"` // "pickup" | "dropoff"
	StationIdx  int     `json:"station_index"`
	StationID   int64   `json:"station_id"`
	Value       float64 `json:"value"`
}

// TransportationArtifacts bundles the anchor activation/flow/aggregation
// families of spec §4.6.4/§6.
type TransportationArtifacts struct {
	StationSelection   []StationSelectionRow
	ScenarioActivation []ScenarioActivationRow
	AnchorActivation   []AnchorActivationRow
	AnchorFlow         []AnchorFlowRow
	AnchorAggregation  []AnchorAggregationRow
	Metadata           Metadata
}

// sortedDemandScenarios returns anchor.Demand's scenario keys in ascending
// order. anchor.Demand is a map, and map iteration order is randomized per
// run; the emitted artifact row order must not be (spec §5, §4.2 invariant
// (iii)).
func sortedDemandScenarios(anchor mapping.Anchor) []int {
	scenarios := make([]int, 0, len(anchor.Demand))
	for s := range anchor.Demand {
		scenarios = append(scenarios, s)
	}
	sort.Ints(scenarios)
	return scenarios
}

// ExtractTransportation reads a solved TransportationResult.
func ExtractTransportation(pd *problemdata.ProblemData, tm *mapping.TransportationMapping, res *model.TransportationResult, sol solverx.Result) (*TransportationArtifacts, error) {
	art := &TransportationArtifacts{
		StationSelection:   ExtractStationSelection(pd, res.Base, sol),
		ScenarioActivation: ExtractScenarioActivation(pd, res.Base, sol),
		Metadata:           BuildMetadata(pd, res.Base, len(tm.Clustering.Clusters), len(tm.Anchors), sol),
	}

	for gi, anchor := range tm.Anchors {
		for _, s := range sortedDemandScenarios(anchor) {
			v := sol.Solution.Value(res.U.Get(model.AnchorScenarioKey{Anchor: gi, Scenario: s}))
			if !active(v) {
				continue
			}
			art.AnchorActivation = append(art.AnchorActivation, AnchorActivationRow{
				AnchorIndex: gi, ClusterA: anchor.Key.A, ClusterB: anchor.Key.B, Scenario: s, Value: v,
			})
		}

		var anchorJ, anchorK []problemdata.StationIndex
		seenJ := make(map[problemdata.StationIndex]bool)
		seenK := make(map[problemdata.StationIndex]bool)
		for _, pair := range anchor.Pairs {
			if !seenJ[pair.Pickup] {
				seenJ[pair.Pickup] = true
				anchorJ = append(anchorJ, pair.Pickup)
			}
			if !seenK[pair.Dropoff] {
				seenK[pair.Dropoff] = true
				anchorK = append(anchorK, pair.Dropoff)
			}
		}
		sort.Slice(anchorJ, func(i, j int) bool { return anchorJ[i] < anchorJ[j] })
		sort.Slice(anchorK, func(i, j int) bool { return anchorK[i] < anchorK[j] })

		for _, s := range sortedDemandScenarios(anchor) {
			for _, j := range anchorJ {
				v := sol.Solution.Value(res.P.Get(model.StationCountKey{Anchor: gi, Scenario: s, Station: j}))
				if !activeContinuous(v) {
					continue
				}
				art.AnchorAggregation = append(art.AnchorAggregation, AnchorAggregationRow{
					AnchorIndex: gi, Scenario: s, Kind: "pickup",
					StationIdx: int(j), StationID: pd.StationID(j), Value: v,
				})
			}
			for _, k := range anchorK {
				v := sol.Solution.Value(res.D.Get(model.StationCountKey{Anchor: gi, Scenario: s, Station: k}))
				if !activeContinuous(v) {
					continue
				}
				art.AnchorAggregation = append(art.AnchorAggregation, AnchorAggregationRow{
					AnchorIndex: gi, Scenario: s, Kind: "dropoff",
					StationIdx: int(k), StationID: pd.StationID(k), Value: v,
				})
			}
			for _, pair := range anchor.Pairs {
				v := sol.Solution.Value(res.F.Get(model.AnchorFlowKey{Anchor: gi, Scenario: s, J: pair.Pickup, K: pair.Dropoff}))
				if !activeContinuous(v) {
					continue
				}
				art.AnchorFlow = append(art.AnchorFlow, AnchorFlowRow{
					AnchorIndex: gi, Scenario: s,
					JIndex: int(pair.Pickup), KIndex: int(pair.Dropoff),
					JID: pd.StationID(pair.Pickup), KID: pd.StationID(pair.Dropoff),
					Value: v,
				})
			}
		}
	}

	return art, nil
}
