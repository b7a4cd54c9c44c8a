package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// DefaultLoadWorkers bounds concurrent warehouse writes regardless of
// how many batches the input produces.
const DefaultLoadWorkers = 4

type batchOutcome struct {
	index int
	rows  int
	err   error
}

// IngestService drives one ingestion run end to end: chunked reading,
// enrichment through the location cache, and concurrent loading into
// the warehouse.
type IngestService struct {
	Enricher *Enricher
	Loader   *Loader
	Events   ports.BatchEventPublisher

	BatchSize   int
	LoadWorkers int
}

func NewIngestService(enricher *Enricher, loader *Loader, events ports.BatchEventPublisher) *IngestService {
	return &IngestService{
		Enricher:    enricher,
		Loader:      loader,
		Events:      events,
		BatchSize:   DefaultBatchSize,
		LoadWorkers: DefaultLoadWorkers,
	}
}

// Ingest streams the source through the pipeline and reports the
// accumulated outcome. Per-record and per-batch failures are absorbed
// into the result; the only fatal error is an unreadable source.
//
// Batches are dispatched to a bounded worker pool and their outcomes
// collected as they complete, in no particular order. On cancellation,
// in-flight loads finish but no new batches are dispatched.
func (s *IngestService) Ingest(ctx context.Context, r io.Reader) (domain.IngestionResult, error) {
	var result domain.IngestionResult

	reader, err := NewChunkReader(r, s.BatchSize)
	if err != nil {
		return result, fmt.Errorf("ingest: open source: %w", err)
	}

	workers := s.LoadWorkers
	if workers <= 0 {
		workers = DefaultLoadWorkers
	}

	sem := make(chan struct{}, workers)
	outcomes := make(chan batchOutcome)
	collectorDone := make(chan struct{})

	go func() {
		defer close(collectorDone)
		for o := range outcomes {
			if o.err != nil {
				result.Failed = append(result.Failed, domain.BatchFailure{
					BatchIndex: o.index,
					Err:        o.err.Error(),
				})
				continue
			}
			result.RowsLoaded += o.rows
		}
	}()

	var wg sync.WaitGroup

dispatch:
	for {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("ingestion cancelled, draining in-flight batches")
			break
		}

		batch, readErr := reader.Next(ctx)
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			// Context cancellation surfaced mid-read; in-flight work
			// still drains below.
			break
		}

		if len(batch.Records) == 0 {
			continue
		}

		// Take a pool slot before dispatching: the reader stalls here
		// while every worker is busy, so read-ahead never exceeds the
		// pool size plus the batch in hand.
		select {
		case sem <- struct{}{}:
			// A freed slot and cancellation can race; prefer stopping.
			if ctx.Err() != nil {
				<-sem
				log.Warn().Err(ctx.Err()).Msg("ingestion cancelled, draining in-flight batches")
				break dispatch
			}
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Msg("ingestion cancelled, draining in-flight batches")
			break dispatch
		}

		log.Info().
			Int("batch_index", batch.Index).
			Int("rows", len(batch.Records)).
			Int("malformed", batch.Malformed).
			Msg("dispatching batch")

		wg.Add(1)
		go func(batch *domain.Batch) {
			defer wg.Done()
			defer func() { <-sem }()

			s.Enricher.Enrich(ctx, batch)

			out, loadErr := s.Loader.Load(ctx, batch)
			s.publish(ctx, batch.Index, out.RowsWritten, loadErr)

			if loadErr != nil {
				outcomes <- batchOutcome{index: batch.Index, err: loadErr}
				return
			}
			outcomes <- batchOutcome{index: batch.Index, rows: out.RowsWritten}
		}(batch)
	}

	wg.Wait()
	close(outcomes)
	<-collectorDone

	result.RowsRead = reader.RowsRead()
	result.MalformedRows = reader.Malformed()

	log.Info().
		Int("rows_read", result.RowsRead).
		Int("rows_loaded", result.RowsLoaded).
		Int("malformed_rows", result.MalformedRows).
		Int("failed_batches", len(result.Failed)).
		Msg("ingestion run complete")

	return result, nil
}

// publish emits one progress event per completed batch. Publish failures
// are logged and never affect the run.
func (s *IngestService) publish(ctx context.Context, index, rows int, loadErr error) {
	if s.Events == nil {
		return
	}

	event := ports.BatchEvent{BatchIndex: index, RowsWritten: rows}
	if loadErr != nil {
		event.Err = loadErr.Error()
	}

	if err := s.Events.PublishBatchEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn().Int("batch_index", index).Err(err).Msg("batch event publish failed")
	}
}
