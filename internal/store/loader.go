// Package store provides the Postgres-backed persistence for stations,
// requests, scenario windows, and cost matrices.
package store

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antigravity/stationselect/internal/dto"
)

// wireTimeLayout matches problemdata.ParseRequestTime's expected format.
const wireTimeLayout = "2006-01-02 15:04:05"

// Loader bulk-loads every input record a run needs to build a
// problemdata.ProblemData.
type Loader struct {
	db *pgxpool.Pool
}

// NewLoader builds a Loader over an established connection pool.
func NewLoader(db *pgxpool.Pool) *Loader {
	return &Loader{db: db}
}

// InputBundle is every record family problemdata.Build consumes.
type InputBundle struct {
	Stations  []dto.StationRecord
	Requests  []dto.RequestRecord
	Windows   []dto.ScenarioWindowRecord
	Walking   []dto.CostEntryRecord
	Routing   []dto.CostEntryRecord // empty if the dataset carries no routing cost matrix
}

// LoadAll reads the full input bundle for a run from the candidate_stations,
// travel_requests, scenario_windows, walking_cost, and routing_cost tables.
func (l *Loader) LoadAll(ctx context.Context) (*InputBundle, error) {
	log.Println("store: loading station-selection input data...")
	start := time.Now()

	bundle := &InputBundle{}

	stationRows, err := l.db.Query(ctx, `SELECT id, lon, lat FROM candidate_stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for stationRows.Next() {
		var s dto.StationRecord
		if err := stationRows.Scan(&s.ID, &s.Lon, &s.Lat); err != nil {
			stationRows.Close()
			return nil, err
		}
		bundle.Stations = append(bundle.Stations, s)
	}
	stationRows.Close()
	log.Printf("store: loaded %d candidate stations", len(bundle.Stations))

	requestRows, err := l.db.Query(ctx, `SELECT id, origin_id, destination_id, request_time FROM travel_requests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for requestRows.Next() {
		var r dto.RequestRecord
		var t time.Time
		if err := requestRows.Scan(&r.ID, &r.OriginID, &r.DestinationID, &t); err != nil {
			requestRows.Close()
			return nil, err
		}
		r.RequestTime = t.Format(wireTimeLayout)
		bundle.Requests = append(bundle.Requests, r)
	}
	requestRows.Close()
	log.Printf("store: loaded %d travel requests", len(bundle.Requests))

	windowRows, err := l.db.Query(ctx, `SELECT label, start_time, end_time FROM scenario_windows ORDER BY label`)
	if err != nil {
		return nil, err
	}
	for windowRows.Next() {
		var w dto.ScenarioWindowRecord
		var start, end *time.Time
		if err := windowRows.Scan(&w.Label, &start, &end); err != nil {
			windowRows.Close()
			return nil, err
		}
		if start != nil {
			w.Start = start.Format(wireTimeLayout)
		}
		if end != nil {
			w.End = end.Format(wireTimeLayout)
		}
		bundle.Windows = append(bundle.Windows, w)
	}
	windowRows.Close()
	log.Printf("store: loaded %d scenario windows", len(bundle.Windows))

	bundle.Walking, err = l.loadCostMatrix(ctx, "walking_cost")
	if err != nil {
		return nil, err
	}
	log.Printf("store: loaded %d walking cost entries", len(bundle.Walking))

	bundle.Routing, err = l.loadCostMatrix(ctx, "routing_cost")
	if err != nil {
		return nil, err
	}
	log.Printf("store: loaded %d routing cost entries", len(bundle.Routing))

	log.Printf("store: input load complete in %s", time.Since(start))
	return bundle, nil
}

func (l *Loader) loadCostMatrix(ctx context.Context, table string) ([]dto.CostEntryRecord, error) {
	rows, err := l.db.Query(ctx, `SELECT from_id, to_id, cost FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []dto.CostEntryRecord
	for rows.Next() {
		var e dto.CostEntryRecord
		if err := rows.Scan(&e.FromID, &e.ToID, &e.Cost); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
