package wizard

import (
	"booking-wizard/internal/ancillary"
	"booking-wizard/internal/models"
	"booking-wizard/internal/seatmap"
)

// Snapshot is the serialisable view of a session. It is derived from state
// and never fed back into it.
type Snapshot struct {
	Step              Step                     `json:"step"`
	StepName          string                   `json:"stepName"`
	MaxStep           Step                     `json:"maxStep"`
	SelectedFlight    string                   `json:"selectedFlight,omitempty"`
	FlightDetails     *models.FlightSummary    `json:"flightDetails,omitempty"`
	PassengerForm     models.PassengerInfo     `json:"passengerForm"`
	PassengerInfo     models.PassengerInfo     `json:"passengerInfo"`
	Offers            []ancillary.Offer        `json:"offers"`
	SelectedServices  []models.SelectedService `json:"selectedServices"`
	ServicesTotal     float64                  `json:"servicesTotal"`
	SelectedSeat      string                   `json:"selectedSeat,omitempty"`
	SelectedSeatPrice float64                  `json:"selectedSeatPrice"`
	SelectedSeatClass string                   `json:"selectedSeatClass,omitempty"`
	SeatmapName       string                   `json:"seatmapName,omitempty"`
	SeatmapLoaded     bool                     `json:"seatmapLoaded"`
	SeatmapError      string                   `json:"seatmapError,omitempty"`
	BookingID         string                   `json:"bookingId,omitempty"`
	BoardingPassStyle string                   `json:"boardingPassStyle"`
	Submitting        bool                     `json:"submitting"`
	UserID            int64                    `json:"userId"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Step:              s.current,
		StepName:          s.current.String(),
		MaxStep:           s.maxReached,
		SelectedFlight:    s.selectedFlight,
		PassengerForm:     s.form,
		PassengerInfo:     s.passengerInfo,
		Offers:            append([]ancillary.Offer{}, s.offers...),
		SelectedServices:  s.services.Items(),
		ServicesTotal:     s.services.Total(),
		SelectedSeat:      s.selectedSeat,
		SelectedSeatPrice: s.selectedSeatPrice,
		SeatmapLoaded:     s.layout != nil,
		SeatmapError:      s.seatmapError,
		BookingID:         s.bookingID,
		BoardingPassStyle: s.boardingPassStyle,
		Submitting:        s.submitting,
		UserID:            models.AnonymousUserID,
	}
	if s.flightDetails != nil {
		details := *s.flightDetails
		snap.FlightDetails = &details
		snap.SeatmapName = details.Seatmap
	}
	if s.selectedSeat != "" {
		snap.SelectedSeatClass = seatmap.ClassFor(s.layout, s.selectedSeat)
	}
	if s.user != nil {
		snap.UserID = s.user.ID
	}
	return snap
}
