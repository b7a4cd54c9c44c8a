package services

import (
	"context"
	"fmt"
	"strings"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// Parameters of one weekly-average query. Mode selects which of the
// mutually exclusive filters applies.
type WeeklyAverageRequest struct {
	Mode   string
	Region string
	LatMin *float64
	LatMax *float64
	LonMin *float64
	LonMax *float64
}

// AggregationService answers weekly-aggregate queries against the
// warehouse. Queries are synchronous and independent; there is no
// shared mutable state between concurrent calls.
type AggregationService struct {
	Querier ports.TripQuerier
}

func NewAggregationService(querier ports.TripQuerier) *AggregationService {
	return &AggregationService{Querier: querier}
}

// WeeklyAverage validates the request, queries weekly trip counts and
// derives the per-day average. Parameter violations are rejected with
// domain.ErrInvalidQueryParam before any warehouse query is issued.
// An empty match set yields an empty slice, not an error.
func (s *AggregationService) WeeklyAverage(
	ctx context.Context,
	req WeeklyAverageRequest,
) ([]domain.WeeklyAverageResult, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return nil, err
	}

	counts, err := s.Querier.WeeklyCounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("weekly average: %w", err)
	}

	results := make([]domain.WeeklyAverageResult, 0, len(counts))
	for _, wc := range counts {
		results = append(results, domain.WeeklyAverageResult{
			Scope:          wc.Scope,
			Week:           wc.Week,
			TripCount:      wc.TripCount,
			AvgTripsPerDay: float64(wc.TripCount) / 7.0,
		})
	}

	return results, nil
}

func buildFilter(req WeeklyAverageRequest) (ports.TripFilter, error) {
	switch req.Mode {
	case "region":
		region := strings.TrimSpace(req.Region)
		if region == "" {
			return ports.TripFilter{}, fmt.Errorf(
				"weekly average: region is required when mode=region: %w",
				domain.ErrInvalidQueryParam,
			)
		}
		return ports.TripFilter{Region: region}, nil

	case "bbox":
		if req.LatMin == nil || req.LatMax == nil || req.LonMin == nil || req.LonMax == nil {
			return ports.TripFilter{}, fmt.Errorf(
				"weekly average: lat_min, lat_max, lon_min, lon_max are required when mode=bbox: %w",
				domain.ErrInvalidQueryParam,
			)
		}
		if *req.LatMin > *req.LatMax {
			return ports.TripFilter{}, fmt.Errorf(
				"weekly average: lat_min %v > lat_max %v: %w",
				*req.LatMin, *req.LatMax, domain.ErrInvalidQueryParam,
			)
		}
		if *req.LonMin > *req.LonMax {
			return ports.TripFilter{}, fmt.Errorf(
				"weekly average: lon_min %v > lon_max %v: %w",
				*req.LonMin, *req.LonMax, domain.ErrInvalidQueryParam,
			)
		}
		return ports.TripFilter{BBox: &domain.BoundingBox{
			LatMin: *req.LatMin,
			LatMax: *req.LatMax,
			LonMin: *req.LonMin,
			LonMax: *req.LonMax,
		}}, nil

	default:
		return ports.TripFilter{}, fmt.Errorf(
			"weekly average: mode must be \"region\" or \"bbox\", got %q: %w",
			req.Mode, domain.ErrInvalidQueryParam,
		)
	}
}
