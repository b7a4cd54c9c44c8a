package domain

// A bounded-size, ordered group of trip records — the unit of concurrent
// enrichment and loading. Created by the chunk reader, enriched in place,
// consumed by the loader.
type Batch struct {
	// Index increases monotonically from 0 in input order.
	Index int
	// Records preserve input row order.
	Records []*TripRecord
	// Malformed counts rows dropped while reading this batch's slice
	// of the input (unparsable timestamp, missing required field).
	Malformed int
}

// Outcome of one successful bulk write.
type LoadOutcome struct {
	BatchIndex  int
	RowsWritten int
}

// A batch that exhausted its write retry budget.
type BatchFailure struct {
	BatchIndex int
	Err        string
}

// IngestionResult is the terminal report of one ingestion run. The run
// itself never aborts on per-record or per-batch failure; callers inspect
// Failed to decide whether partial success is acceptable.
type IngestionResult struct {
	RowsRead      int
	RowsLoaded    int
	MalformedRows int
	Failed        []BatchFailure
}
