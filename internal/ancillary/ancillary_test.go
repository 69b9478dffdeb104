package ancillary

import (
	"encoding/json"
	"testing"

	"booking-wizard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_ToggleRoundTrip(t *testing.T) {
	s := NewSelection()
	s.Toggle("Priority boarding", 7)
	before := s.Items()
	beforeTotal := s.Total()

	assert.True(t, s.Toggle("Extra baggage", 25))
	assert.Equal(t, beforeTotal+25, s.Total())

	assert.False(t, s.Toggle("Extra baggage", 25))
	assert.Equal(t, before, s.Items())
	assert.Equal(t, beforeTotal, s.Total())
}

func TestSelection_NoDuplicates(t *testing.T) {
	s := NewSelection()
	s.Toggle("Meal", 5)
	s.Toggle("Lounge", 12)
	s.Toggle("Meal", 5)
	s.Toggle("Meal", 9)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Lounge, Meal", s.Names())
	assert.Equal(t, 21.0, s.Total())
}

func TestSelection_Remove(t *testing.T) {
	s := NewSelection()
	s.Toggle("Meal", 5)

	s.Remove("Wifi")
	assert.Equal(t, 1, s.Len())

	s.Remove("Meal")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.Total())
	assert.Equal(t, "", s.Names())
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"json array", `["Meal","Extra baggage"]`, []string{"Meal", "Extra baggage"}},
		{"comma list", "Meal, Extra baggage,,", []string{"Meal", "Extra baggage"}},
		{"json object falls back", `{"a":1}`, []string{`{"a":1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNames(tt.in))
		})
	}
}

func TestResolveOffers(t *testing.T) {
	catalog := Catalog([]models.FlightConfig{
		{Name: "Meal", Data: json.RawMessage(`{"price": 15}`), Description: "Hot meal"},
		{Name: "Lounge", Data: json.RawMessage(`not json`)},
	})

	offers := ResolveOffers(`["Meal","Lounge","Wifi"]`, catalog)

	require.Len(t, offers, 3)
	assert.Equal(t, "Meal", offers[0].Name)
	assert.Equal(t, 15.0, offers[0].Price)
	assert.Equal(t, "Hot meal", offers[0].Description)
	assert.True(t, offers[0].Resolved)

	assert.Equal(t, 0.0, offers[1].Price)
	assert.True(t, offers[1].Resolved)

	assert.Equal(t, "Wifi", offers[2].Name)
	assert.Equal(t, 0.0, offers[2].Price)
	assert.False(t, offers[2].Resolved)
}

func TestResolveOffers_NoCatalog(t *testing.T) {
	offers := ResolveOffers(`["Meal"]`, nil)
	require.Len(t, offers, 1)
	assert.Equal(t, 0.0, offers[0].Price)
}
