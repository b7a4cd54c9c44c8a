package dto

import "time"

type WeeklyAverageResponse struct {
	Scope          string    `json:"region_or_scope"`
	Week           time.Time `json:"week"`
	TripCount      int       `json:"trip_count"`
	AvgTripsPerDay float64   `json:"avg_trips_per_day"`
}

type ListWeeklyAverageResponse struct {
	Results []WeeklyAverageResponse `json:"results"`
}
