package ports

import "context"

// One event per completed batch, published as the ingestion run
// progresses. Err is empty on success.
type BatchEvent struct {
	BatchIndex  int    `json:"batch_index"`
	RowsWritten int    `json:"rows_written"`
	Err         string `json:"error,omitempty"`
}

// Port: push channel for ingestion progress. Consumers (e.g. an HTTP
// push stream) subscribe out of band; publish failures must never
// affect the ingestion run itself.
type BatchEventPublisher interface {
	PublishBatchEvent(ctx context.Context, event BatchEvent) error
}
