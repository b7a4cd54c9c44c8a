package ports

import (
	"context"
	"errors"

	"trip-analytics-service/internal/domain"
)

// ErrLocationNotFound is returned when the geocoding service answers but
// has no match for the coordinate.
var ErrLocationNotFound = errors.New("no location found for coordinate")

// Contract for resolving a coordinate to location metadata via an
// external reverse-geocoding capability.
type Geocoder interface {
	// Return the city, country and region for the given coordinate.
	ReverseGeocode(ctx context.Context, coord domain.Coordinates) (domain.Location, error)
}

// LocationResolver is the enrichment-side view of the location cache.
// Resolution always completes, degrading to the Unknown sentinel on
// lookup failure.
type LocationResolver interface {
	Resolve(ctx context.Context, coord domain.Coordinates) domain.Location
}
