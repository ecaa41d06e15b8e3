package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antigravity/stationselect/internal/dto"
)

// StationsRepository serves the read-side HTTP surface: it never
// participates in a solve, only in browsing the candidate set.
type StationsRepository struct {
	db *pgxpool.Pool
}

// NewStationsRepository builds a StationsRepository over an established
// connection pool.
func NewStationsRepository(db *pgxpool.Pool) *StationsRepository {
	return &StationsRepository{db: db}
}

// ListStations returns every candidate station, ordered by id.
func (r *StationsRepository) ListStations(ctx context.Context) ([]dto.StationRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT id, lon, lat FROM candidate_stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.StationRecord
	for rows.Next() {
		var s dto.StationRecord
		if err := rows.Scan(&s.ID, &s.Lon, &s.Lat); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStation returns a single candidate station by id.
func (r *StationsRepository) GetStation(ctx context.Context, id int64) (*dto.StationRecord, error) {
	var s dto.StationRecord
	err := r.db.QueryRow(ctx, `SELECT id, lon, lat FROM candidate_stations WHERE id = $1`, id).Scan(&s.ID, &s.Lon, &s.Lat)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// IsNoRows reports whether err is the pgx "no rows" sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
