// Package ancillary keeps the passenger's selection of optional paid services
// and resolves which services a flight offers.
package ancillary

import (
	"strings"

	"booking-wizard/internal/models"
)

// Selection is an ordered set of services keyed by name.
type Selection struct {
	items []models.SelectedService
}

func NewSelection() *Selection {
	return &Selection{}
}

// Toggle removes name when it is already selected, otherwise appends it with
// the given price snapshot. It reports whether the service is now selected.
func (s *Selection) Toggle(name string, price float64) bool {
	if i := s.index(name); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return false
	}
	s.items = append(s.items, models.SelectedService{Name: name, Price: price})
	return true
}

// Remove drops name if present.
func (s *Selection) Remove(name string) {
	if i := s.index(name); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *Selection) Contains(name string) bool {
	return s.index(name) >= 0
}

// Total is the sum of the selected prices.
func (s *Selection) Total() float64 {
	var total float64
	for _, item := range s.items {
		total += item.Price
	}
	return total
}

// Items returns a copy of the selection in selection order.
func (s *Selection) Items() []models.SelectedService {
	out := make([]models.SelectedService, len(s.items))
	copy(out, s.items)
	return out
}

// Names joins the selected names the way the booking record stores them.
func (s *Selection) Names() string {
	names := make([]string, 0, len(s.items))
	for _, item := range s.items {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

func (s *Selection) Len() int {
	return len(s.items)
}

func (s *Selection) index(name string) int {
	for i, item := range s.items {
		if item.Name == name {
			return i
		}
	}
	return -1
}
