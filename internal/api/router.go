package api

import (
	"net/http"

	"trip-analytics-service/internal/api/handlers"
	"trip-analytics-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware
// of concrete adapters).
func NewRouter(ingest *services.IngestService, agg *services.AggregationService) http.Handler {
	mux := http.NewServeMux()

	ingestHandler := &handlers.IngestHandler{Service: ingest}
	weeklyHandler := &handlers.WeeklyAverageHandler{Service: agg}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/ingest", ingestHandler.Ingest)
	mux.HandleFunc("/weekly_average", weeklyHandler.Get)

	return loggingMiddleware(mux)
}
