package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/platform/obs"
	"trip-analytics-service/internal/ports"
)

// PgLocationStore is a Postgres-backed cross-run location cache living in
// the warehouse next to the trips table (geocode_cache).
type PgLocationStore struct {
	Pool *pgxpool.Pool
}

func NewPgLocationStore(pool *pgxpool.Pool) *PgLocationStore {
	return &PgLocationStore{Pool: pool}
}

// Fetch cached locations for the given keys.
func (s *PgLocationStore) GetMany(
	ctx context.Context,
	keys []domain.CoordinateKey,
) (_ map[domain.CoordinateKey]domain.Location, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.Pool == nil {
		return nil, errors.New("pg location store: pool is nil")
	}

	if len(keys) == 0 {
		return map[domain.CoordinateKey]domain.Location{}, nil
	}

	byString := make(map[string]domain.CoordinateKey, len(keys))
	coords := make([]string, 0, len(keys))
	for _, k := range keys {
		ks := k.String()
		if _, ok := byString[ks]; ok {
			continue
		}
		byString[ks] = k
		coords = append(coords, ks)
	}

	q := `
	SELECT coord, city, country, region
	FROM geocode_cache
	WHERE coord = ANY($1::text[]);
	`

	rows, err := s.Pool.Query(ctx, q, coords)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.CoordinateKey]domain.Location, len(coords))
	for rows.Next() {
		var coord, city, country, region string
		if err := rows.Scan(&coord, &city, &country, &region); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		key, ok := byString[coord]
		if !ok {
			continue
		}
		out[key] = domain.Location{City: city, Country: country, Region: region}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store key -> location mappings in the cache.
func (s *PgLocationStore) PutMany(
	ctx context.Context,
	entries map[domain.CoordinateKey]domain.Location,
) error {
	if s.Pool == nil {
		return errors.New("pg location store: pool is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	q := `
	INSERT INTO geocode_cache (coord, city, country, region)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (coord) DO UPDATE
	SET city = EXCLUDED.city,
		country = EXCLUDED.country,
		region = EXCLUDED.region;
	`

	batch := &pgx.Batch{}
	for k, loc := range entries {
		batch.Queue(q, k.String(), loc.City, loc.Country, loc.Region)
	}

	if err := s.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert geocode cache: %w", err)
	}

	return nil
}

var _ ports.LocationStore = (*PgLocationStore)(nil)
