package ancillary

import (
	"encoding/json"
	"strings"

	"booking-wizard/internal/models"
)

// Offer is a service the current flight makes available
type Offer struct {
	models.ServiceCatalogEntry
	Resolved bool `json:"resolved"`
}

type servicePayload struct {
	Price float64 `json:"price"`
}

// ParseNames reads a flight's pax_service field. A JSON array of names is the
// normal form; anything else is treated as a comma-separated list.
func ParseNames(paxService string) []string {
	trimmed := strings.TrimSpace(paxService)
	if trimmed == "" {
		return nil
	}

	var names []string
	if err := json.Unmarshal([]byte(trimmed), &names); err == nil {
		return names
	}

	var out []string
	for _, part := range strings.Split(trimmed, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Catalog converts backend service configs into catalog entries. Entries with
// an unreadable payload keep their name at price 0.
func Catalog(configs []models.FlightConfig) []models.ServiceCatalogEntry {
	out := make([]models.ServiceCatalogEntry, 0, len(configs))
	for _, cfg := range configs {
		entry := models.ServiceCatalogEntry{Name: cfg.Name, Description: cfg.Description}
		var payload servicePayload
		if len(cfg.Data) > 0 && json.Unmarshal(cfg.Data, &payload) == nil && payload.Price > 0 {
			entry.Price = payload.Price
		}
		out = append(out, entry)
	}
	return out
}

// ResolveOffers matches the flight's service names against the catalog by
// exact name. Names missing from the catalog are still offered at price 0.
func ResolveOffers(paxService string, catalog []models.ServiceCatalogEntry) []Offer {
	names := ParseNames(paxService)
	offers := make([]Offer, 0, len(names))
	for _, name := range names {
		offer := Offer{ServiceCatalogEntry: models.ServiceCatalogEntry{Name: name}}
		for _, entry := range catalog {
			if entry.Name == name {
				offer.ServiceCatalogEntry = entry
				offer.Resolved = true
				break
			}
		}
		offers = append(offers, offer)
	}
	return offers
}
