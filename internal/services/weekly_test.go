package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// stubQuerier returns canned counts and records the filter it received.
type stubQuerier struct {
	counts []ports.WeekCount
	err    error
	calls  int
	filter ports.TripFilter
}

func (q *stubQuerier) WeeklyCounts(ctx context.Context, filter ports.TripFilter) ([]ports.WeekCount, error) {
	q.calls++
	q.filter = filter
	if q.err != nil {
		return nil, q.err
	}
	return q.counts, nil
}

func floatPtr(v float64) *float64 { return &v }

func TestWeeklyAverageByRegion(t *testing.T) {
	week1 := time.Date(2018, 5, 21, 0, 0, 0, 0, time.UTC)
	week2 := time.Date(2018, 5, 28, 0, 0, 0, 0, time.UTC)

	querier := &stubQuerier{counts: []ports.WeekCount{
		{Scope: "Turin", Week: week1, TripCount: 6},
		{Scope: "Turin", Week: week2, TripCount: 4},
	}}
	svc := NewAggregationService(querier)

	results, err := svc.WeeklyAverage(context.Background(), WeeklyAverageRequest{
		Mode:   "region",
		Region: "Turin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d rows, want 2", len(results))
	}

	if results[0].TripCount != 6 || results[1].TripCount != 4 {
		t.Errorf("counts = %d, %d, want 6, 4", results[0].TripCount, results[1].TripCount)
	}
	if !results[0].Week.Before(results[1].Week) {
		t.Error("results not ordered by week ascending")
	}

	// avg_trips_per_day is always trip_count / 7.0 exactly.
	for _, row := range results {
		if row.AvgTripsPerDay != float64(row.TripCount)/7.0 {
			t.Errorf("avg = %v for count %d", row.AvgTripsPerDay, row.TripCount)
		}
	}
	if math.Abs(results[0].AvgTripsPerDay-0.857) > 0.001 {
		t.Errorf("week1 avg = %v, want ~0.857", results[0].AvgTripsPerDay)
	}
	if math.Abs(results[1].AvgTripsPerDay-0.571) > 0.001 {
		t.Errorf("week2 avg = %v, want ~0.571", results[1].AvgTripsPerDay)
	}

	if querier.filter.Region != "Turin" || querier.filter.BBox != nil {
		t.Errorf("filter = %+v", querier.filter)
	}
}

func TestWeeklyAverageByBBox(t *testing.T) {
	querier := &stubQuerier{counts: []ports.WeekCount{}}
	svc := NewAggregationService(querier)

	results, err := svc.WeeklyAverage(context.Background(), WeeklyAverageRequest{
		Mode:   "bbox",
		LatMin: floatPtr(44.0),
		LatMax: floatPtr(46.0),
		LonMin: floatPtr(7.0),
		LonMax: floatPtr(8.0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An empty match set is an empty sequence, not an error.
	if len(results) != 0 {
		t.Fatalf("results = %d rows, want 0", len(results))
	}

	if querier.filter.BBox == nil {
		t.Fatal("bbox filter not set")
	}
	if querier.filter.BBox.LatMin != 44.0 || querier.filter.BBox.LonMax != 8.0 {
		t.Errorf("bbox = %+v", *querier.filter.BBox)
	}
}

func TestWeeklyAverageRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		name string
		req  WeeklyAverageRequest
	}{
		{"unknown mode", WeeklyAverageRequest{Mode: "city"}},
		{"empty mode", WeeklyAverageRequest{}},
		{"region missing", WeeklyAverageRequest{Mode: "region"}},
		{"region blank", WeeklyAverageRequest{Mode: "region", Region: "   "}},
		{"bbox incomplete", WeeklyAverageRequest{
			Mode: "bbox", LatMin: floatPtr(1), LatMax: floatPtr(2), LonMin: floatPtr(3),
		}},
		{"lat_min above lat_max", WeeklyAverageRequest{
			Mode:   "bbox",
			LatMin: floatPtr(5), LatMax: floatPtr(1),
			LonMin: floatPtr(0), LonMax: floatPtr(1),
		}},
		{"lon_min above lon_max", WeeklyAverageRequest{
			Mode:   "bbox",
			LatMin: floatPtr(0), LatMax: floatPtr(1),
			LonMin: floatPtr(9), LonMax: floatPtr(2),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			querier := &stubQuerier{}
			svc := NewAggregationService(querier)

			_, err := svc.WeeklyAverage(context.Background(), tc.req)
			if !errors.Is(err, domain.ErrInvalidQueryParam) {
				t.Fatalf("error = %v, want ErrInvalidQueryParam", err)
			}
			// Rejected before any warehouse query is issued.
			if querier.calls != 0 {
				t.Fatalf("querier called %d times, want 0", querier.calls)
			}
		})
	}
}

func TestWeeklyAverageWrapsQuerierErrors(t *testing.T) {
	querier := &stubQuerier{err: errors.New("warehouse down")}
	svc := NewAggregationService(querier)

	_, err := svc.WeeklyAverage(context.Background(), WeeklyAverageRequest{
		Mode:   "region",
		Region: "Turin",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrInvalidQueryParam) {
		t.Fatal("warehouse failure must not look like a client error")
	}
}
