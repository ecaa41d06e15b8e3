// Package solution is the solution extractor of spec §4.7: once the
// solver returns, it walks each variable family using the same sparse
// indexing that built it, thresholds at 0.5 (binary) or 1e-6
// (continuous/integer), and emits the tabular output artifacts of spec
// §6 plus a metadata document.
//
// Grounded on internal/handler/transport_handler.go's json.NewEncoder
// response style (plain structs, no intermediate DTO layer) and on
// internal/routing/raptor.go's label-walking reconstruction pattern
// (read solver state once, build result structs, never mutate the
// source model afterward).
package solution

import (
	"time"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

const (
	boolThreshold       = 0.5
	continuousThreshold = 1e-6
)

func active(v float64) bool           { return v > boolThreshold }
func activeContinuous(v float64) bool { return v > continuousThreshold }

// StationSelectionRow is one row of the "Station selection" artifact.
type StationSelectionRow struct {
	StationIndex int     `json:"station_index"`
	StationID    int64   `json:"station_id"`
	Selected     bool    `json:"selected"`
	Value        float64 `json:"value"`
}

// ScenarioActivationRow is one row of the "Scenario activation" artifact.
type ScenarioActivationRow struct {
	StationIndex  int     `json:"station_index"`
	StationID     int64   `json:"station_id"`
	ScenarioIndex int     `json:"scenario_index"`
	ScenarioLabel string  `json:"scenario_label"`
	Value         float64 `json:"value"`
}

// ExtractStationSelection walks y_j, emitting one row per station.
func ExtractStationSelection(pd *problemdata.ProblemData, base model.Base, sol solverx.Result) []StationSelectionRow {
	var rows []StationSelectionRow
	for _, idx := range pd.AllStationIndices() {
		v := sol.Solution.Value(base.Y.Get(idx))
		rows = append(rows, StationSelectionRow{
			StationIndex: int(idx),
			StationID:    pd.StationID(idx),
			Selected:     active(v),
			Value:        v,
		})
	}
	return rows
}

// ExtractScenarioActivation walks z_{j,s}, emitting one row per
// (station, scenario); only active rows are returned, per the output
// artifact's "one row per non-zero variable" convention.
func ExtractScenarioActivation(pd *problemdata.ProblemData, base model.Base, sol solverx.Result) []ScenarioActivationRow {
	var rows []ScenarioActivationRow
	for _, idx := range pd.AllStationIndices() {
		for s := 1; s <= pd.ScenarioCount(); s++ {
			v := sol.Solution.Value(base.Z.Get(model.ZKey{Station: idx, Scenario: s}))
			if !active(v) {
				continue
			}
			rows = append(rows, ScenarioActivationRow{
				StationIndex:  int(idx),
				StationID:     pd.StationID(idx),
				ScenarioIndex: s,
				ScenarioLabel: pd.Scenario(s).Label,
				Value:         v,
			})
		}
	}
	return rows
}

// Metadata records model type, counts and solve outcome, per spec §6
// ("A metadata document records model type, scenario count, cluster
// count, anchor count, variable/constraint counts per family,
// termination status, objective value, and runtime.").
type Metadata struct {
	ModelType        string           `json:"model_type"`
	ScenarioCount    int              `json:"scenario_count"`
	ClusterCount     int              `json:"cluster_count,omitempty"`
	AnchorCount      int              `json:"anchor_count,omitempty"`
	VarCounts        map[string]int   `json:"var_counts"`
	ConstraintCounts map[string]int   `json:"constraint_counts"`
	Status           solverx.Status   `json:"status"`
	ObjectiveValue   float64          `json:"objective_value"`
	Runtime          time.Duration    `json:"runtime_ns"`
}

// BuildMetadata assembles the metadata document common to every variant.
func BuildMetadata(pd *problemdata.ProblemData, base model.Base, clusterCount, anchorCount int, sol solverx.Result) Metadata {
	return Metadata{
		ModelType:        base.Variant.String(),
		ScenarioCount:    pd.ScenarioCount(),
		ClusterCount:     clusterCount,
		AnchorCount:      anchorCount,
		VarCounts:        base.VarCounts,
		ConstraintCounts: base.ConstraintCounts,
		Status:           sol.Status,
		ObjectiveValue:   sol.ObjectiveValue,
		Runtime:          sol.RunTime,
	}
}

// RequestAssignment is the per-request annotation of spec §4.7: the
// resolved pickup/drop-off, walking distances, and (when applicable)
// pooling classification and detour delta.
type RequestAssignment struct {
	RequestID  int64  `json:"request_id"`
	Scenario   int    `json:"scenario"`
	TimeID     *int   `json:"time_id,omitempty"`
	OriginID   int64  `json:"origin_id"`
	DestID     int64  `json:"dest_id"`
	PickupID   int64  `json:"pickup_id"`
	DropoffID  int64  `json:"dropoff_id"`

	WalkOrigin float64 `json:"walk_origin"`
	WalkDest   float64 `json:"walk_dest"`

	DirectInVehicleTime float64 `json:"direct_in_vehicle_time"`
	Pooled              bool    `json:"pooled"`
	PoolingRole         string  `json:"pooling_role,omitempty"` // "primary" | "secondary"
	ActualInVehicleTime float64 `json:"actual_in_vehicle_time"`
	DetourDelta         float64 `json:"detour_delta"`
}

func walkingOrZero(pd *problemdata.ProblemData, fromID, toID int64) float64 {
	w, err := pd.WalkingCost(fromID, toID)
	if err != nil {
		return 0
	}
	return w
}

func routingOrZero(pd *problemdata.ProblemData, j, k problemdata.StationIndex) float64 {
	r, err := pd.RoutingCostByIndex(j, k)
	if err != nil {
		return 0
	}
	return r
}

// odAssignment is the shared shape both the pooling and aggregated
// extractors populate before pooling classification (pooling variant
// only) refines it.
type odAssignment struct {
	od      mapping.ODPair
	pickup  problemdata.StationIndex
	dropoff problemdata.StationIndex
}
