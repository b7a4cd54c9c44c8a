package services

import (
	"context"
	"fmt"
	"time"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// Loader performs one bulk insert per enriched batch, retrying failed
// writes with exponential backoff. A batch is one atomic write attempt;
// it is never split or reordered, so a batch retried and eventually
// succeeding contributes exactly its own row count once.
type Loader struct {
	Writer ports.TripWriter
	// Attempts is the total write budget per batch (first try included).
	Attempts int
	// Backoff is the initial delay between attempts; it doubles after
	// each failure.
	Backoff time.Duration
}

func NewLoader(writer ports.TripWriter) *Loader {
	return &Loader{
		Writer:   writer,
		Attempts: 3,
		Backoff:  200 * time.Millisecond,
	}
}

// Load writes the batch, retrying up to the budget. The write itself
// runs on a detached context so an in-flight attempt completes even if
// the run is cancelled; cancellation only prevents further retries.
func (l *Loader) Load(ctx context.Context, batch *domain.Batch) (domain.LoadOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.LoadOutcome{}, fmt.Errorf("load batch %d: %w", batch.Index, err)
	}

	writeCtx := context.WithoutCancel(ctx)
	backoff := l.Backoff

	var lastErr error
	for attempt := 1; attempt <= l.Attempts; attempt++ {
		n, err := l.Writer.WriteTrips(writeCtx, batch.Records)
		if err == nil {
			return domain.LoadOutcome{BatchIndex: batch.Index, RowsWritten: n}, nil
		}
		lastErr = err

		if attempt == l.Attempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.LoadOutcome{}, fmt.Errorf("load batch %d: %w", batch.Index, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
	}

	return domain.LoadOutcome{}, fmt.Errorf(
		"load batch %d: write failed after %d attempts: %w",
		batch.Index, l.Attempts, lastErr,
	)
}
