package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antigravity/stationselect/internal/store"
)

// StationsHandler serves the read-only candidate-station browsing
// surface backed by internal/store.
type StationsHandler struct {
	Repo *store.StationsRepository
}

// NewStationsHandler builds a StationsHandler over repo.
func NewStationsHandler(repo *store.StationsRepository) *StationsHandler {
	return &StationsHandler{Repo: repo}
}

// ListStations handles GET /api/v1/stations.
func (h *StationsHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.Repo.ListStations(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stations)
}

// GetStation handles GET /api/v1/stations/{id}.
func (h *StationsHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}

	station, err := h.Repo.GetStation(r.Context(), id)
	if err != nil {
		if store.IsNoRows(err) {
			http.Error(w, "station not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(station)
}
