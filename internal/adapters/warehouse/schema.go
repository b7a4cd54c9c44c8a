package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Initialize the warehouse schema.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		region                TEXT,
		origin_coord          TEXT,
		destination_coord     TEXT,
		departure_time        TIMESTAMPTZ,
		datasource            TEXT,
		origin_city           TEXT,
		origin_country        TEXT,
		origin_latitude       DOUBLE PRECISION,
		origin_longitude      DOUBLE PRECISION,
		destination_city      TEXT,
		destination_country   TEXT,
		destination_latitude  DOUBLE PRECISION,
		destination_longitude DOUBLE PRECISION
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		coord   TEXT PRIMARY KEY,
		city    TEXT NOT NULL,
		country TEXT NOT NULL,
		region  TEXT NOT NULL
	);
	`

	createRegionIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_region_departure
	ON trips (region, departure_time);
	`

	createBBoxIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_origin_lat_lon
	ON trips (origin_latitude, origin_longitude);
	`

	statements := []string{
		createTripsQuery,
		createGeocodeCacheQuery,
		createRegionIndexQuery,
		createBBoxIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
