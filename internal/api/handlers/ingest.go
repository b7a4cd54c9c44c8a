package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"trip-analytics-service/internal/api/dto"
	"trip-analytics-service/internal/services"
)

// Form parts beyond this stay on disk; the file part is streamed either way.
const maxMultipartMemory = 32 << 20

// IngestHandler exposes the CSV upload endpoint that triggers one
// ingestion run.
type IngestHandler struct {
	Service *services.IngestService
}

func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	log.Info().Str("filename", header.Filename).Msg("starting ingestion run")

	result, err := h.Service.Ingest(r.Context(), file)
	if err != nil {
		log.Error().Str("filename", header.Filename).Err(err).Msg("ingestion failed")
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status := "success"
	if len(result.Failed) > 0 {
		status = "partial"
	}

	res := dto.IngestResponse{
		Status:        status,
		Filename:      header.Filename,
		RowsRead:      result.RowsRead,
		RowsLoaded:    result.RowsLoaded,
		MalformedRows: result.MalformedRows,
		FailedBatches: make([]dto.BatchFailureResponse, 0, len(result.Failed)),
	}
	for _, f := range result.Failed {
		res.FailedBatches = append(res.FailedBatches, dto.BatchFailureResponse{
			BatchIndex: f.BatchIndex,
			Error:      f.Err,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
