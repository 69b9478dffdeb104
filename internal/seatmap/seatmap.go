// Package seatmap derives seat status, price and grid layout from a cabin
// layout configuration and the bookings already made on a flight.
package seatmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"booking-wizard/internal/models"
)

// DefaultClass is reported for seats whose row falls outside every cabin class.
const DefaultClass = "Economy"

var (
	ErrNoClasses          = errors.New("no cabin classes defined in seatmap configuration")
	ErrInvalidRows        = errors.New("invalid row configuration")
	ErrInvalidSeatLetters = errors.New("invalid seat letters configuration")
	ErrEmptyLayout        = errors.New("seatmap configuration data is empty")
	ErrLayoutNotFound     = errors.New("seatmap config not found")
)

var rowPattern = regexp.MustCompile(`\d+`)

type Status string

const (
	Available Status = models.SeatAvailable
	Occupied  Status = models.SeatOccupied
	Disabled  Status = models.SeatDisabled
)

// Seat is a single selectable position in the cabin
type Seat struct {
	ID     string  `json:"id"`
	Class  string  `json:"class"`
	Row    int     `json:"row"`
	Letter string  `json:"letter"`
	Status Status  `json:"status"`
	Price  float64 `json:"price"`
}

// Position is one step of an enumeration: either a seat or an aisle gap.
type Position struct {
	Aisle  bool   `json:"aisle,omitempty"`
	SeatID string `json:"seatId,omitempty"`
	Class  string `json:"class,omitempty"`
	Row    int    `json:"row,omitempty"`
	Letter string `json:"letter,omitempty"`
}

// Model answers status and price questions for one flight.
type Model struct {
	layout   *models.CabinLayoutConfig
	disabled map[string]struct{}
	occupied map[string]struct{}
	seats    map[string]Seat
}

// New builds a model. A nil layout produces a model with no seats.
func New(layout *models.CabinLayoutConfig, bookings []models.ExistingBooking) *Model {
	m := &Model{
		layout:   layout,
		disabled: make(map[string]struct{}),
		occupied: make(map[string]struct{}, len(bookings)),
		seats:    make(map[string]Seat),
	}
	for _, b := range bookings {
		m.occupied[b.Seat] = struct{}{}
	}
	if layout == nil {
		return m
	}
	for _, id := range layout.DisabledSeats {
		m.disabled[id] = struct{}{}
	}
	for _, class := range layout.Classes {
		if ValidateClass(class) != nil {
			continue
		}
		for row := class.Rows[0]; row <= class.Rows[1]; row++ {
			for _, letter := range class.SeatLetters {
				id := SeatID(row, letter)
				if _, seen := m.seats[id]; seen {
					continue
				}
				m.seats[id] = Seat{
					ID:     id,
					Class:  class.Name,
					Row:    row,
					Letter: letter,
					Status: m.Classify(id),
					Price:  PriceOf(id, class),
				}
			}
		}
	}
	return m
}

// SeatID formats a row and column letter, e.g. "12A".
func SeatID(row int, letter string) string {
	return strconv.Itoa(row) + letter
}

// Classify reports the status of a seat. Disabled wins over occupied.
func (m *Model) Classify(seatID string) Status {
	if _, ok := m.disabled[seatID]; ok {
		return Disabled
	}
	if _, ok := m.occupied[seatID]; ok {
		return Occupied
	}
	return Available
}

// Lookup returns the seat with its class, status and price.
func (m *Model) Lookup(seatID string) (Seat, bool) {
	seat, ok := m.seats[seatID]
	return seat, ok
}

// Selectable is true only for seats that exist in the layout and are available.
func (m *Model) Selectable(seatID string) bool {
	seat, ok := m.seats[seatID]
	return ok && seat.Status == Available
}

// PriceOf returns the per-seat override, else the class base price (zero when unset).
func PriceOf(seatID string, class models.CabinClass) float64 {
	if price, ok := class.SeatPrices[seatID]; ok {
		return price
	}
	return class.BasePrice
}

// ValidateClass checks the parts of a class needed to lay out its seats.
func ValidateClass(class models.CabinClass) error {
	if len(class.Rows) < 2 || class.Rows[0] > class.Rows[1] {
		return ErrInvalidRows
	}
	if class.SeatLetters == nil {
		return ErrInvalidSeatLetters
	}
	return nil
}

// Enumerate walks classes in declaration order, rows ascending, letters in
// declared order, inserting an aisle after each column listed in aisles_after.
// Malformed classes are skipped.
func Enumerate(layout models.CabinLayoutConfig) []Position {
	var out []Position
	for _, class := range layout.Classes {
		if ValidateClass(class) != nil {
			continue
		}
		aisles := aisleSet(class.AislesAfter)
		for row := class.Rows[0]; row <= class.Rows[1]; row++ {
			for i, letter := range class.SeatLetters {
				out = append(out, Position{
					SeatID: SeatID(row, letter),
					Class:  class.Name,
					Row:    row,
					Letter: letter,
				})
				if _, ok := aisles[i+1]; ok {
					out = append(out, Position{Aisle: true, Row: row})
				}
			}
		}
	}
	return out
}

// ClassFor resolves the cabin class name for a seat by its numeric row.
func ClassFor(layout *models.CabinLayoutConfig, seatID string) string {
	if layout == nil {
		return DefaultClass
	}
	digits := rowPattern.FindString(seatID)
	if digits == "" {
		return DefaultClass
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return DefaultClass
	}
	for _, class := range layout.Classes {
		if len(class.Rows) < 2 {
			continue
		}
		if row >= class.Rows[0] && row <= class.Rows[1] {
			if class.Name == "" {
				return DefaultClass
			}
			return class.Name
		}
	}
	return DefaultClass
}

type rawLayout struct {
	Classes       json.RawMessage `json:"classes"`
	DisabledSeats json.RawMessage `json:"disabled_seats"`
}

type rawClass struct {
	Name        json.RawMessage `json:"name"`
	Rows        json.RawMessage `json:"rows"`
	SeatLetters json.RawMessage `json:"seat_letters"`
	AislesAfter json.RawMessage `json:"aisles_after"`
	BasePrice   json.RawMessage `json:"base_price"`
	SeatPrices  json.RawMessage `json:"seat_prices"`
}

// Decode parses the data payload of a cabin_layout config entry. Classes are
// decoded one by one and a field of the wrong type is left unset, so a badly
// typed class fails validation on its own and the others still render.
func Decode(data json.RawMessage) (*models.CabinLayoutConfig, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, ErrEmptyLayout
	}
	var raw rawLayout
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode seatmap config: %w", err)
	}

	layout := &models.CabinLayoutConfig{}
	decodeField(raw.DisabledSeats, &layout.DisabledSeats)

	var classes []json.RawMessage
	if !decodeField(raw.Classes, &classes) {
		return layout, nil
	}
	layout.Classes = make([]models.CabinClass, 0, len(classes))
	for _, data := range classes {
		layout.Classes = append(layout.Classes, decodeClass(data))
	}
	return layout, nil
}

func decodeClass(data json.RawMessage) models.CabinClass {
	var class models.CabinClass
	var raw rawClass
	if json.Unmarshal(data, &raw) != nil {
		return class
	}
	decodeField(raw.Name, &class.Name)
	decodeField(raw.Rows, &class.Rows)
	decodeField(raw.SeatLetters, &class.SeatLetters)
	decodeField(raw.AislesAfter, &class.AislesAfter)
	decodeField(raw.BasePrice, &class.BasePrice)
	decodeField(raw.SeatPrices, &class.SeatPrices)
	return class
}

// decodeField fills out from data and reports success. On failure out is left
// at its zero value.
func decodeField[T any](data json.RawMessage, out *T) bool {
	if len(data) == 0 {
		return false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return false
	}
	*out = v
	return true
}

// FindLayout picks the named layout out of the backend's cabin_layout list.
func FindLayout(configs []models.FlightConfig, name string) (*models.CabinLayoutConfig, error) {
	for _, cfg := range configs {
		if cfg.Name == name {
			return Decode(cfg.Data)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
}

func aisleSet(after []int) map[int]struct{} {
	set := make(map[int]struct{}, len(after))
	for _, col := range after {
		set[col] = struct{}{}
	}
	return set
}
