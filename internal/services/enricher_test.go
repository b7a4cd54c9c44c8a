package services

import (
	"context"
	"testing"

	"trip-analytics-service/internal/adapters/cache"
	"trip-analytics-service/internal/adapters/geocode"
	"trip-analytics-service/internal/domain"
)

func turinMilanGeocoder() *geocode.MockGeocoder {
	turin := domain.Coordinates{Lat: 45.0705, Lon: 7.6866}
	milan := domain.Coordinates{Lat: 45.4642, Lon: 9.19}

	return geocode.NewMockGeocoder(map[domain.CoordinateKey]domain.Location{
		turin.Key(): {City: "Turin", Country: "IT", Region: "Piedmont"},
		milan.Key(): {City: "Milan", Country: "IT", Region: "Lombardy"},
	})
}

func TestEnricherPopulatesLocations(t *testing.T) {
	enricher := NewEnricher(cache.NewLocationCache(turinMilanGeocoder(), nil))

	rec := &domain.TripRecord{
		Region:      "Turin",
		Origin:      &domain.Coordinates{Lat: 45.0705, Lon: 7.6866},
		Destination: &domain.Coordinates{Lat: 45.4642, Lon: 9.19},
	}
	batch := &domain.Batch{Index: 0, Records: []*domain.TripRecord{rec}}

	enricher.Enrich(context.Background(), batch)

	if rec.OriginCity != "Turin" || rec.OriginCountry != "IT" {
		t.Errorf("origin = %q/%q", rec.OriginCity, rec.OriginCountry)
	}
	if rec.DestinationCity != "Milan" || rec.DestinationCountry != "IT" {
		t.Errorf("destination = %q/%q", rec.DestinationCity, rec.DestinationCountry)
	}
	// Region derives from the origin coordinate, overriding the input column.
	if rec.Region != "Piedmont" {
		t.Errorf("region = %q, want %q", rec.Region, "Piedmont")
	}
}

// fixedResolver resolves every coordinate to the same location.
type fixedResolver struct {
	loc domain.Location
}

func (r fixedResolver) Resolve(ctx context.Context, coord domain.Coordinates) domain.Location {
	return r.loc
}

func TestEnricherCopiesResolvedFields(t *testing.T) {
	enricher := NewEnricher(fixedResolver{loc: domain.Location{
		City: "Genoa", Country: "IT", Region: "Liguria",
	}})

	rec := &domain.TripRecord{
		Region:      "somewhere else",
		Origin:      &domain.Coordinates{Lat: 44.4056, Lon: 8.9463},
		Destination: &domain.Coordinates{Lat: 44.41, Lon: 8.93},
	}
	enricher.Enrich(context.Background(), &domain.Batch{Records: []*domain.TripRecord{rec}})

	if rec.OriginCity != "Genoa" || rec.OriginCountry != "IT" || rec.Region != "Liguria" {
		t.Errorf("origin fields = %q/%q/%q", rec.OriginCity, rec.OriginCountry, rec.Region)
	}
	if rec.DestinationCity != "Genoa" || rec.DestinationCountry != "IT" {
		t.Errorf("destination fields = %q/%q", rec.DestinationCity, rec.DestinationCountry)
	}
}

func TestEnricherDegradesToUnknown(t *testing.T) {
	enricher := NewEnricher(cache.NewLocationCache(turinMilanGeocoder(), nil))

	rec := &domain.TripRecord{
		Region:      "Turin",
		Origin:      nil, // unparsable coordinate
		Destination: &domain.Coordinates{Lat: 0, Lon: 0}, // unknown to the geocoder
	}
	batch := &domain.Batch{Index: 0, Records: []*domain.TripRecord{rec}}

	enricher.Enrich(context.Background(), batch)

	if rec.OriginCity != "Unknown" || rec.OriginCountry != "Unknown" || rec.Region != "Unknown" {
		t.Errorf("origin fields = %q/%q/%q, want Unknown sentinel", rec.OriginCity, rec.OriginCountry, rec.Region)
	}
	if rec.DestinationCity != "Unknown" {
		t.Errorf("destination city = %q, want Unknown", rec.DestinationCity)
	}
}

func TestEnricherConcurrentWorkersShareCache(t *testing.T) {
	geocoder := turinMilanGeocoder()
	enricher := NewEnricher(cache.NewLocationCache(geocoder, nil))
	enricher.Workers = 8

	turin := domain.Coordinates{Lat: 45.0705, Lon: 7.6866}
	milan := domain.Coordinates{Lat: 45.4642, Lon: 9.19}

	records := make([]*domain.TripRecord, 0, 100)
	for i := 0; i < 100; i++ {
		o, d := turin, milan
		records = append(records, &domain.TripRecord{Origin: &o, Destination: &d})
	}
	batch := &domain.Batch{Index: 0, Records: records}

	enricher.Enrich(context.Background(), batch)

	for i, rec := range records {
		if rec.OriginCity != "Turin" || rec.DestinationCity != "Milan" {
			t.Fatalf("record %d not enriched: %+v", i, rec)
		}
	}

	// Enrichment cost is O(distinct coordinates), not O(records).
	if n := geocoder.TotalCalls(); n != 2 {
		t.Fatalf("geocoder calls = %d, want 2", n)
	}
}
