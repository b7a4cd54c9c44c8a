package services

import (
	"context"
	"sync"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// Enricher populates location metadata on every record of a batch by
// resolving origin and destination coordinates through the shared
// location resolver. It holds no state of its own, so any number of
// instances may run concurrently across different batches.
//
// Region is taken from the resolved origin location, making it a pure
// function of the rounded origin coordinate: two records with the same
// rounded origin always land in the same region.
type Enricher struct {
	Resolver ports.LocationResolver
	// Workers bounds intra-batch fan-out. Values <= 1 enrich
	// sequentially; anything higher is useful when the geocoder has
	// high latency and the cache is cold.
	Workers int
}

func NewEnricher(resolver ports.LocationResolver) *Enricher {
	return &Enricher{Resolver: resolver, Workers: 1}
}

// Enrich mutates the batch in place. A record whose coordinates could
// not be parsed degrades to the Unknown sentinel; enrichment never
// fails a batch.
func (e *Enricher) Enrich(ctx context.Context, batch *domain.Batch) {
	if e.Workers <= 1 {
		for _, rec := range batch.Records {
			e.enrichRecord(ctx, rec)
		}
		return
	}

	sem := make(chan struct{}, e.Workers)
	var wg sync.WaitGroup

	for _, rec := range batch.Records {
		wg.Add(1)
		go func(rec *domain.TripRecord) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			e.enrichRecord(ctx, rec)
		}(rec)
	}

	wg.Wait()
}

func (e *Enricher) enrichRecord(ctx context.Context, rec *domain.TripRecord) {
	origin := domain.UnknownLocation
	if rec.Origin != nil {
		origin = e.Resolver.Resolve(ctx, *rec.Origin)
	}
	rec.OriginCity = origin.City
	rec.OriginCountry = origin.Country
	rec.Region = origin.Region

	dest := domain.UnknownLocation
	if rec.Destination != nil {
		dest = e.Resolver.Resolve(ctx, *rec.Destination)
	}
	rec.DestinationCity = dest.City
	rec.DestinationCountry = dest.Country
}
