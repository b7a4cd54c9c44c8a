package domain

import (
	"errors"
	"time"
)

// ErrInvalidQueryParam marks client-input errors on the weekly-average
// query path. These are rejected before any warehouse query is issued.
var ErrInvalidQueryParam = errors.New("invalid query parameter")

// Inclusive axis-aligned latitude/longitude rectangle filter.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// One weekly aggregate row. Week is the Monday-start week the trips fall
// into; AvgTripsPerDay is always TripCount / 7.0.
type WeeklyAverageResult struct {
	Scope          string
	Week           time.Time
	TripCount      int
	AvgTripsPerDay float64
}
