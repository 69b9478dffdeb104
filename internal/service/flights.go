package service

import (
	"strings"

	"booking-wizard/internal/models"
)

// FilterFlights keeps the flights whose number, airports, aircraft or status
// contain query, ignoring case. An empty query keeps everything.
func FilterFlights(flights []models.FlightSummary, query string) []models.FlightSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return flights
	}

	matched := make([]models.FlightSummary, 0, len(flights))
	for _, f := range flights {
		fields := []string{f.FlightNumber, f.Departure, f.Arrival, f.Aircraft, f.Status}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), query) {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}
