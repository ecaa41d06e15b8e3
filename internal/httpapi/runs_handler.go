package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/model"
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/runner"
	"github.com/antigravity/stationselect/internal/solverx"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

// RunsHandler serves POST /api/v1/runs and GET /api/v1/runs/{id}/artifacts.
// Completed runs are cached in-process by run id; there is no persistent
// run-artifacts table (spec §6.1, "internal/httpapi... exist only to
// exercise the ambient stack").
type RunsHandler struct {
	pd     *problemdata.ProblemData
	logger *zap.Logger

	mu   sync.Mutex
	runs map[uuid.UUID]*runner.Outcome
}

// NewRunsHandler builds a RunsHandler serving runs against pd.
func NewRunsHandler(pd *problemdata.ProblemData, logger *zap.Logger) *RunsHandler {
	return &RunsHandler{pd: pd, logger: logger, runs: make(map[uuid.UUID]*runner.Outcome)}
}

type paramsDoc struct {
	K             int     `json:"k"`
	L             int     `json:"l"`
	BuildExact    bool    `json:"build_exact"`
	TimeWindowSec int     `json:"time_window_sec"`
	WalkingLimit  float64 `json:"walking_limit"`
	HasWalkLimit  bool    `json:"has_walk_limit"`
	RoutingDelay  float64 `json:"routing_delay"`
	LooseLinking  bool    `json:"loose_linking"`
}

type clusterParamsDoc struct {
	Diameter *float64 `json:"diameter,omitempty"`
	Count    *int     `json:"count,omitempty"`
}

type weightsDoc struct {
	Alpha               float64 `json:"alpha"`
	Gamma               float64 `json:"gamma"`
	CorridorWeight      float64 `json:"corridor_weight"`
	InVehicleTimeWeight float64 `json:"in_vehicle_time_weight"`
	ActivationCost      float64 `json:"activation_cost"`
}

type solveDoc struct {
	TimeLimitSec   float64 `json:"time_limit_sec"`
	MIPGapRelative float64 `json:"mip_gap_relative"`
	Verbose        bool    `json:"verbose"`
}

type runRequestDoc struct {
	Variant       string           `json:"variant"`
	Params        paramsDoc        `json:"params"`
	ClusterParams clusterParamsDoc `json:"cluster_params"`
	Weights       weightsDoc       `json:"weights"`
	Solve         solveDoc         `json:"solve"`
}

type runResponseDoc struct {
	RunID          string  `json:"run_id"`
	Variant        string  `json:"variant"`
	Status         string  `json:"status"`
	ObjectiveValue float64 `json:"objective_value"`
}

func parseVariant(s string) (mapping.Variant, bool) {
	switch s {
	case "pooling":
		return mapping.VariantPooling, true
	case "clustering":
		return mapping.VariantClustering, true
	case "corridor-z":
		return mapping.VariantCorridorZ, true
	case "corridor-x":
		return mapping.VariantCorridorX, true
	case "transportation":
		return mapping.VariantTransportation, true
	default:
		return 0, false
	}
}

// CreateRun handles POST /api/v1/runs.
func (h *RunsHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var doc runRequestDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	variant, ok := parseVariant(doc.Variant)
	if !ok {
		http.Error(w, "unknown variant: "+doc.Variant, http.StatusBadRequest)
		return
	}

	req := runner.Request{
		Variant: variant,
		Params: mapping.Params{
			K: doc.Params.K, L: doc.Params.L, BuildExact: doc.Params.BuildExact,
			TimeWindowSec: doc.Params.TimeWindowSec, WalkingLimit: doc.Params.WalkingLimit,
			HasWalkLimit: doc.Params.HasWalkLimit, RoutingDelay: doc.Params.RoutingDelay,
			LooseLinking: doc.Params.LooseLinking,
		},
		ClusterParams: zonecluster.Params{
			Diameter: doc.ClusterParams.Diameter, Count: doc.ClusterParams.Count,
			SolveOptions: solverx.DefaultOptions(),
		},
		Weights: model.Weights{
			Alpha: doc.Weights.Alpha, Gamma: doc.Weights.Gamma,
			CorridorWeight: doc.Weights.CorridorWeight, InVehicleTimeWeight: doc.Weights.InVehicleTimeWeight,
			ActivationCost: doc.Weights.ActivationCost,
		},
		SolveOptions: solverx.Options{
			Provider:       "highs",
			TimeLimit:      time.Duration(doc.Solve.TimeLimitSec * float64(time.Second)),
			MIPGapRelative: doc.Solve.MIPGapRelative,
			Verbose:        doc.Solve.Verbose,
		},
	}

	outcome, err := runner.Run(h.pd, req, h.logger)
	if err != nil {
		h.logger.Error("run failed", zap.Error(err), zap.String("variant", doc.Variant))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	runID := uuid.New()
	h.mu.Lock()
	h.runs[runID] = outcome
	h.mu.Unlock()

	resp := runResponseDoc{
		RunID: runID.String(), Variant: variant.String(),
		Status: string(outcome.Status), ObjectiveValue: outcome.ObjectiveValue,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetRunArtifacts handles GET /api/v1/runs/{id}/artifacts.
func (h *RunsHandler) GetRunArtifacts(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	runID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	outcome, ok := h.runs[runID]
	h.mu.Unlock()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch outcome.Variant {
	case mapping.VariantPooling:
		json.NewEncoder(w).Encode(outcome.Pooling)
	case mapping.VariantClustering:
		json.NewEncoder(w).Encode(outcome.Clustering)
	case mapping.VariantCorridorZ, mapping.VariantCorridorX:
		json.NewEncoder(w).Encode(outcome.Corridor)
	case mapping.VariantTransportation:
		json.NewEncoder(w).Encode(outcome.Transportation)
	}
}
