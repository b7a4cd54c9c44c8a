package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trip-analytics-service/internal/domain"
)

// DefaultBatchSize is the number of records per batch when the caller
// does not override it. Matches the source system's chunk size.
const DefaultBatchSize = 50_000

// Timestamp layouts accepted in the departure_time column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ChunkReader streams a CSV source in bounded-size batches without
// materializing the whole dataset. It is forward-only and not
// restartable: consuming the sequence twice requires reopening the
// source.
//
// Malformed rows (missing required field, unparsable timestamp) are
// dropped and counted, never fatal. An unparsable coordinate does not
// make a row malformed: the source system keeps such rows with null
// enrichment, and so do we.
type ChunkReader struct {
	cr        *csv.Reader
	batchSize int

	cols      map[string]int
	nextIndex int
	rowsRead  int
	malformed int
	done      bool
}

var requiredColumns = []string{"region", "origin_coord", "destination_coord", "datasource"}

// NewChunkReader reads the header row and resolves column positions.
// A missing required column is a configuration-level error and fatal to
// the run. "datetime" is accepted as an alias for "departure_time".
func NewChunkReader(r io.Reader, batchSize int) (*ChunkReader, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("chunk reader: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	// The source system renames "datetime" on ingest.
	if _, ok := cols["departure_time"]; !ok {
		if i, ok := cols["datetime"]; ok {
			cols["departure_time"] = i
		}
	}

	missing := make([]string, 0)
	for _, name := range append(requiredColumns, "departure_time") {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("chunk reader: missing required columns: %s", strings.Join(missing, ", "))
	}

	return &ChunkReader{cr: cr, batchSize: batchSize, cols: cols}, nil
}

// Next returns the next batch, or io.EOF once the source is exhausted.
// Each batch holds at most batchSize records; the final batch may be
// smaller. Batches preserve input row order.
func (r *ChunkReader) Next(ctx context.Context) (*domain.Batch, error) {
	if r.done {
		return nil, io.EOF
	}

	batch := &domain.Batch{
		Index:   r.nextIndex,
		Records: make([]*domain.TripRecord, 0, r.batchSize),
	}

	for len(batch.Records) < r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.cr.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			// Structurally broken CSV row (e.g. bad quoting).
			r.rowsRead++
			r.malformed++
			batch.Malformed++
			continue
		}

		r.rowsRead++

		rec, ok := r.parseRow(row)
		if !ok {
			r.malformed++
			batch.Malformed++
			continue
		}

		batch.Records = append(batch.Records, rec)
	}

	if len(batch.Records) == 0 && batch.Malformed == 0 && r.done {
		return nil, io.EOF
	}

	r.nextIndex++
	return batch, nil
}

func (r *ChunkReader) field(row []string, name string) (string, bool) {
	i := r.cols[name]
	if i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func (r *ChunkReader) parseRow(row []string) (*domain.TripRecord, bool) {
	region, ok := r.field(row, "region")
	if !ok || region == "" {
		return nil, false
	}
	originCoord, ok := r.field(row, "origin_coord")
	if !ok || originCoord == "" {
		return nil, false
	}
	destCoord, ok := r.field(row, "destination_coord")
	if !ok || destCoord == "" {
		return nil, false
	}
	datasource, ok := r.field(row, "datasource")
	if !ok || datasource == "" {
		return nil, false
	}
	rawTime, ok := r.field(row, "departure_time")
	if !ok || rawTime == "" {
		return nil, false
	}

	departure, err := parseDepartureTime(rawTime)
	if err != nil {
		return nil, false
	}

	rec := &domain.TripRecord{
		Region:           region,
		OriginCoord:      originCoord,
		DestinationCoord: destCoord,
		DepartureTime:    departure,
		Datasource:       datasource,
	}

	// Coordinate parse failures are tolerated; enrichment degrades to
	// the Unknown sentinel for such records.
	if origin, err := domain.ParseCoordinates(originCoord); err == nil {
		rec.Origin = &origin
	}
	if dest, err := domain.ParseCoordinates(destCoord); err == nil {
		rec.Destination = &dest
	}

	return rec, true
}

func parseDepartureTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse departure time: unrecognized layout %q", s)
}

// RowsRead reports total input rows consumed so far, malformed included.
func (r *ChunkReader) RowsRead() int { return r.rowsRead }

// Malformed reports total rows dropped so far.
func (r *ChunkReader) Malformed() int { return r.malformed }
