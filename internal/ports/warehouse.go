package ports

import (
	"context"
	"time"

	"trip-analytics-service/internal/domain"
)

// Port: bulk-insert capability of the analytical store. One call writes
// one batch atomically; the writer never splits or reorders it.
type TripWriter interface {
	// Write all records and return the number of rows written.
	WriteTrips(ctx context.Context, records []*domain.TripRecord) (int, error)
}

// Filter for weekly trip counts. Exactly one of Region or BBox is set;
// the aggregation service validates that before building a filter.
type TripFilter struct {
	Region string
	BBox   *domain.BoundingBox
}

// One (scope, week) count row as returned by the warehouse,
// ordered by week ascending.
type WeekCount struct {
	Scope     string
	Week      time.Time
	TripCount int
}

// Port: read capability of the analytical store for weekly aggregates.
type TripQuerier interface {
	// Count trips matching the filter, grouped by Monday-start week
	// of departure_time, ordered by week ascending.
	WeeklyCounts(ctx context.Context, filter TripFilter) ([]WeekCount, error)
}
