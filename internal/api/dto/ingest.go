package dto

type BatchFailureResponse struct {
	BatchIndex int    `json:"batch_index"`
	Error      string `json:"error"`
}

type IngestResponse struct {
	Status        string                 `json:"status"`
	Filename      string                 `json:"filename"`
	RowsRead      int                    `json:"rows_read"`
	RowsLoaded    int                    `json:"rows_loaded"`
	MalformedRows int                    `json:"malformed_rows"`
	FailedBatches []BatchFailureResponse `json:"failed_batches"`
}
