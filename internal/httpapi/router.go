package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/store"
)

// NewRouter builds the chi router serving the station-selection HTTP
// surface (spec §6.1), grounded on the teacher's middleware/CORS stack.
func NewRouter(pool *pgxpool.Pool, pd *problemdata.ProblemData, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	stationsHandler := NewStationsHandler(store.NewStationsRepository(pool))
	runsHandler := NewRunsHandler(pd, logger)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "stationselect_api"})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			http.Error(w, `{"status":"error","db":"disconnected"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "db": "connected"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stations", stationsHandler.ListStations)
		r.Get("/stations/{id}", stationsHandler.GetStation)
		r.Post("/runs", runsHandler.CreateRun)
		r.Get("/runs/{id}/artifacts", runsHandler.GetRunArtifacts)
	})

	return r
}
