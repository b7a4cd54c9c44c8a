package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"trip-analytics-service/internal/api/dto"
	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/services"
)

// WeeklyAverageHandler exposes the weekly trip aggregate query endpoint.
type WeeklyAverageHandler struct {
	Service *services.AggregationService
}

func (h *WeeklyAverageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	req := services.WeeklyAverageRequest{
		Mode:   q.Get("mode"),
		Region: q.Get("region"),
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"lat_min", &req.LatMin},
		{"lat_max", &req.LatMax},
		{"lon_min", &req.LonMin},
		{"lon_max", &req.LonMax},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, p.name+" must be a number")
			return
		}
		*p.dst = &v
	}

	results, err := h.Service.WeeklyAverage(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQueryParam) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("weekly average query failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListWeeklyAverageResponse{
		Results: make([]dto.WeeklyAverageResponse, 0, len(results)),
	}
	for _, row := range results {
		res.Results = append(res.Results, dto.WeeklyAverageResponse{
			Scope:          row.Scope,
			Week:           row.Week,
			TripCount:      row.TripCount,
			AvgTripsPerDay: row.AvgTripsPerDay,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
