package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"trip-analytics-service/internal/domain"
)

// flakyWriter fails a configurable number of times before succeeding.
type flakyWriter struct {
	mu        sync.Mutex
	failFirst int
	attempts  int
	written   int
}

func (w *flakyWriter) WriteTrips(ctx context.Context, records []*domain.TripRecord) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.attempts++
	if w.attempts <= w.failFirst {
		return 0, errors.New("warehouse write failed")
	}
	w.written += len(records)
	return len(records), nil
}

func testBatch(index, size int) *domain.Batch {
	records := make([]*domain.TripRecord, 0, size)
	for i := 0; i < size; i++ {
		records = append(records, &domain.TripRecord{Region: "Turin", Datasource: "funny_car"})
	}
	return &domain.Batch{Index: index, Records: records}
}

func TestLoaderRetriesThenSucceeds(t *testing.T) {
	writer := &flakyWriter{failFirst: 2}
	loader := NewLoader(writer)
	loader.Backoff = time.Millisecond

	out, err := loader.Load(context.Background(), testBatch(7, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.BatchIndex != 7 {
		t.Errorf("batch index = %d, want 7", out.BatchIndex)
	}
	// A retried batch contributes its own row count exactly once.
	if out.RowsWritten != 10 {
		t.Errorf("rows written = %d, want 10", out.RowsWritten)
	}
	if writer.attempts != 3 {
		t.Errorf("attempts = %d, want 3", writer.attempts)
	}
	if writer.written != 10 {
		t.Errorf("warehouse rows = %d, want 10", writer.written)
	}
}

func TestLoaderExhaustsRetryBudget(t *testing.T) {
	writer := &flakyWriter{failFirst: 100}
	loader := NewLoader(writer)
	loader.Backoff = time.Millisecond

	_, err := loader.Load(context.Background(), testBatch(0, 5))
	if err == nil {
		t.Fatal("expected error after exhausting retry budget")
	}

	if writer.attempts != loader.Attempts {
		t.Errorf("attempts = %d, want %d", writer.attempts, loader.Attempts)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error %q does not mention attempt budget", err)
	}
}

func TestLoaderStopsRetryingOnCancel(t *testing.T) {
	writer := &flakyWriter{failFirst: 100}
	loader := NewLoader(writer)
	loader.Backoff = time.Hour // cancellation must preempt the backoff wait

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := loader.Load(ctx, testBatch(0, 5))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancellation did not preempt backoff")
	}
	if writer.attempts != 1 {
		t.Errorf("attempts = %d, want 1", writer.attempts)
	}
}
