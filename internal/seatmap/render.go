package seatmap

import "booking-wizard/internal/models"

// Map is the renderable grid for a whole cabin
type Map struct {
	Classes []ClassGrid `json:"classes,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ClassGrid is one cabin class. Error is set instead of Rows when the class is malformed.
type ClassGrid struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`
}

type Row struct {
	Number int    `json:"number"`
	Cells  []Cell `json:"cells"`
}

// Cell is either a seat or an aisle gap
type Cell struct {
	Aisle bool  `json:"aisle,omitempty"`
	Seat  *Seat `json:"seat,omitempty"`
}

// Render lays out every class of the model's layout. A malformed class carries
// its own error and the remaining classes still render.
func (m *Model) Render() Map {
	if m.layout == nil || len(m.layout.Classes) == 0 {
		return Map{Error: ErrNoClasses.Error()}
	}

	out := Map{Classes: make([]ClassGrid, 0, len(m.layout.Classes))}
	for _, class := range m.layout.Classes {
		out.Classes = append(out.Classes, m.renderClass(class))
	}
	return out
}

func (m *Model) renderClass(class models.CabinClass) ClassGrid {
	grid := ClassGrid{Name: class.Name}
	if err := ValidateClass(class); err != nil {
		grid.Error = err.Error()
		return grid
	}

	aisles := aisleSet(class.AislesAfter)
	for row := class.Rows[0]; row <= class.Rows[1]; row++ {
		r := Row{Number: row, Cells: make([]Cell, 0, len(class.SeatLetters)+len(aisles))}
		for i, letter := range class.SeatLetters {
			id := SeatID(row, letter)
			seat := Seat{
				ID:     id,
				Class:  class.Name,
				Row:    row,
				Letter: letter,
				Status: m.Classify(id),
				Price:  PriceOf(id, class),
			}
			r.Cells = append(r.Cells, Cell{Seat: &seat})
			if _, ok := aisles[i+1]; ok {
				r.Cells = append(r.Cells, Cell{Aisle: true})
			}
		}
		grid.Rows = append(grid.Rows, r)
	}
	return grid
}
