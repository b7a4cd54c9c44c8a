package warehouse

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

// Postgres-backed implementation of the TripWriter and TripQuerier ports.
type PgTripRepository struct {
	Pool *pgxpool.Pool
}

func NewPgTripRepository(pool *pgxpool.Pool) *PgTripRepository {
	return &PgTripRepository{Pool: pool}
}

var tripColumns = []string{
	"region",
	"origin_coord",
	"destination_coord",
	"departure_time",
	"datasource",
	"origin_city",
	"origin_country",
	"origin_latitude",
	"origin_longitude",
	"destination_city",
	"destination_country",
	"destination_latitude",
	"destination_longitude",
}

// WriteTrips bulk-inserts one batch via COPY. The batch is one atomic
// write attempt: either the whole COPY lands or the caller retries it.
func (r *PgTripRepository) WriteTrips(
	ctx context.Context,
	records []*domain.TripRecord,
) (_ int, err error) {
	defer obs.Time(ctx, "warehouse.WriteTrips")(&err)

	if r.Pool == nil {
		return 0, errors.New("pg trip repository: pool is nil")
	}

	if len(records) == 0 {
		return 0, nil
	}

	n, err := r.Pool.CopyFrom(
		ctx,
		pgx.Identifier{"trips"},
		tripColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]

			var originLat, originLon, destLat, destLon any
			if rec.Origin != nil {
				originLat, originLon = rec.Origin.Lat, rec.Origin.Lon
			}
			if rec.Destination != nil {
				destLat, destLon = rec.Destination.Lat, rec.Destination.Lon
			}

			return []any{
				rec.Region,
				rec.OriginCoord,
				rec.DestinationCoord,
				rec.DepartureTime,
				rec.Datasource,
				rec.OriginCity,
				rec.OriginCountry,
				originLat,
				originLon,
				rec.DestinationCity,
				rec.DestinationCountry,
				destLat,
				destLon,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("write trips: copy into trips table: %w", err)
	}

	return int(n), nil
}

// WeeklyCounts groups matching trips by Monday-start week of
// departure_time. date_trunc('week', ...) is ISO-week (Monday) in
// Postgres, so the bucketing happens warehouse-side like every other
// aggregate in the system.
func (r *PgTripRepository) WeeklyCounts(
	ctx context.Context,
	filter ports.TripFilter,
) (_ []ports.WeekCount, err error) {
	defer obs.Time(ctx, "warehouse.WeeklyCounts")(&err)

	if r.Pool == nil {
		return nil, errors.New("pg trip repository: pool is nil")
	}

	var (
		q    string
		args []any
	)

	switch {
	case filter.Region != "":
		q = `
		SELECT region, date_trunc('week', departure_time) AS week, COUNT(*)
		FROM trips
		WHERE region = $1
		GROUP BY region, week
		ORDER BY week;
		`
		args = []any{filter.Region}

	case filter.BBox != nil:
		q = `
		SELECT 'bbox', date_trunc('week', departure_time) AS week, COUNT(*)
		FROM trips
		WHERE origin_latitude BETWEEN $1 AND $2
		  AND origin_longitude BETWEEN $3 AND $4
		GROUP BY week
		ORDER BY week;
		`
		b := filter.BBox
		args = []any{b.LatMin, b.LatMax, b.LonMin, b.LonMax}

	default:
		return nil, errors.New("weekly counts: filter must set region or bbox")
	}

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("weekly counts: query trips table: %w", err)
	}
	defer rows.Close()

	counts := make([]ports.WeekCount, 0, 16)
	for rows.Next() {
		var wc ports.WeekCount
		if err := rows.Scan(&wc.Scope, &wc.Week, &wc.TripCount); err != nil {
			return nil, fmt.Errorf("weekly counts: scan row: %w", err)
		}
		counts = append(counts, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("weekly counts: row iteration: %w", err)
	}

	return counts, nil
}

var _ ports.TripWriter = (*PgTripRepository)(nil)
var _ ports.TripQuerier = (*PgTripRepository)(nil)
