package models

import (
	"encoding/json"
	"time"
)

// Seat statuses
const (
	SeatAvailable = "available"
	SeatOccupied  = "occupied"
	SeatDisabled  = "disabled"
)

// Session statuses
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
	SessionExpired   = "EXPIRED"
	SessionCancelled = "CANCELLED"
)

// Boarding pass formats
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// DefaultBoardingPassStyle is used when a flight carries no boarding_pass_default.
const DefaultBoardingPassStyle = "default"

// AnonymousUserID is sent as user_id when nobody is logged in.
const AnonymousUserID int64 = -1

// ConfigKind names a family of flight configurations on the backend.
type ConfigKind string

const (
	ConfigCabinLayout   ConfigKind = "cabin_layout"
	ConfigService       ConfigKind = "service"
	ConfigBoardingStyle ConfigKind = "boarding_style"
)

// FlightSummary is one row of the public schedule
type FlightSummary struct {
	ID                  int64  `json:"id,omitempty"`
	FlightNumber        string `json:"flight_number"`
	Departure           string `json:"departure"`
	Arrival             string `json:"arrival"`
	Datetime            int64  `json:"datetime"` // unix seconds
	Enroute             string `json:"enroute"`
	Status              string `json:"status"`
	Aircraft            string `json:"aircraft"`
	Seatmap             string `json:"seatmap"`
	PaxService          string `json:"pax_service"`
	BoardingPassDefault string `json:"boarding_pass_default"`
	FlyingCount         int    `json:"flying_count"`
}

// CabinClass is a contiguous row range sharing pricing and labeling
type CabinClass struct {
	Name        string             `json:"name"`
	Rows        []int              `json:"rows"`
	SeatLetters []string           `json:"seat_letters"`
	AislesAfter []int              `json:"aisles_after,omitempty"`
	BasePrice   float64            `json:"base_price,omitempty"`
	SeatPrices  map[string]float64 `json:"seat_prices,omitempty"`
}

// CabinLayoutConfig is a named seat-map template
type CabinLayoutConfig struct {
	Classes       []CabinClass `json:"classes"`
	DisabledSeats []string     `json:"disabled_seats,omitempty"`
}

// FlightConfig is a generic backend configuration entry. Data is decoded by the
// consumer so one malformed entry does not poison the whole list.
type FlightConfig struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        ConfigKind      `json:"type"`
	Data        json.RawMessage `json:"data"`
	Description string          `json:"description"`
}

// ServiceCatalogEntry is a globally defined ancillary service
type ServiceCatalogEntry struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// SelectedService is an entry in the passenger's current selection
type SelectedService struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ExistingBooking is the occupancy projection of a booking
type ExistingBooking struct {
	ID   string `json:"id,omitempty"`
	Seat string `json:"seat"`
}

// PassengerInfo holds the passenger form fields
type PassengerInfo struct {
	Name            string `json:"name"`
	DiscordID       string `json:"discordId"`
	UserID          string `json:"userId"`
	SpecialRequests string `json:"specialRequests"`
}

// User is the logged-in account returned by /api/auth/me
type User struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	SocialID  string `json:"social_id"`
	VirtualID string `json:"virtual_id"`
}

// BookingRequest is the aggregate record posted on submission
type BookingRequest struct {
	FlightNumber  string `json:"flight_number"`
	Seat          string `json:"seat"`
	ServeClass    string `json:"serve_class"`
	PaxService    string `json:"pax_service"`
	UserID        int64  `json:"user_id"`
	BoardingPass  string `json:"boarding_pass"`
	Note          string `json:"note"`
	PassengerName string `json:"passenger_name"`
	SocialID      string `json:"social_id"`
	VirtualID     string `json:"virtual_id"`
}

// BookingConfirmation is the backend's reply to a successful submission
type BookingConfirmation struct {
	BookingID string `json:"booking_id"`
	Message   string `json:"message,omitempty"`
}

// WizardSession is a row of the session registry
type WizardSession struct {
	SessionID         string    `json:"sessionId"`
	WorkflowID        string    `json:"workflowId"`
	RunID             string    `json:"runId"`
	Status            string    `json:"status"`
	Step              int       `json:"step"`
	FlightNumber      *string   `json:"flightNumber,omitempty"`
	BookingID         *string   `json:"bookingId,omitempty"`
	BoardingPassStyle string    `json:"boardingPassStyle"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// SessionProgress is what the workflow records after each committed action
type SessionProgress struct {
	SessionID         string `json:"sessionId"`
	Status            string `json:"status"`
	Step              int    `json:"step"`
	FlightNumber      string `json:"flightNumber,omitempty"`
	BookingID         string `json:"bookingId,omitempty"`
	BoardingPassStyle string `json:"boardingPassStyle"`
}

// API Request/Response models

type SelectFlightRequest struct {
	FlightNumber string `json:"flight_number"`
}

type PassengerRequest struct {
	Name            string `json:"name"`
	DiscordID       string `json:"discord_id"`
	UserID          string `json:"user_id"`
	SpecialRequests string `json:"special_requests"`
}

type StepRequest struct {
	Step int `json:"step"`
}

type ServiceRequest struct {
	Name string `json:"name"`
}

type SeatRequest struct {
	Seat string `json:"seat"`
}

type StartSessionResponse struct {
	SessionID  string `json:"sessionId"`
	WorkflowID string `json:"workflowId"`
}
