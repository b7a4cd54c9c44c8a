package ports

import (
	"context"

	"trip-analytics-service/internal/domain"
)

// Port: a persistent coordinate-to-location cache shared across runs.
// It sits between the in-memory cache and the external geocoder; misses
// here are not errors, they simply fall through to the geocoder.
type LocationStore interface {
	// Fetch cached locations for the given keys. Keys without an entry
	// are absent from the returned map.
	GetMany(ctx context.Context, keys []domain.CoordinateKey) (map[domain.CoordinateKey]domain.Location, error)
	// Store key -> location mappings.
	PutMany(ctx context.Context, entries map[domain.CoordinateKey]domain.Location) error
}
