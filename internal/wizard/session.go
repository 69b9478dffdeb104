// Package wizard implements the booking wizard: an explicit step machine that
// owns one passenger's booking session from flight choice to receipt.
//
// A Session is single-owner and not safe for concurrent use. It performs no
// logging and reads no clock so it can be hosted inside a workflow.
package wizard

import (
	"context"
	"errors"
	"net/http"

	"booking-wizard/internal/ancillary"
	"booking-wizard/internal/backend"
	"booking-wizard/internal/models"
	"booking-wizard/internal/seatmap"
)

// MsgNoSeatmap is shown in place of the grid when the flight names no layout.
const MsgNoSeatmap = "No seatmap configured for this flight"

// Backend is the part of the airline API the wizard depends on.
type Backend interface {
	Flight(ctx context.Context, flightNumber string) (*models.FlightSummary, error)
	FlightBookings(ctx context.Context, flightNumber string) ([]models.ExistingBooking, error)
	FlightConfigs(ctx context.Context, kind models.ConfigKind) ([]models.FlightConfig, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
}

// Session is the state of one booking wizard.
type Session struct {
	backend Backend

	current    Step
	maxReached Step

	selectedFlight string
	flightDetails  *models.FlightSummary

	form          models.PassengerInfo
	passengerInfo models.PassengerInfo
	user          *models.User

	offers   []ancillary.Offer
	services *ancillary.Selection

	selectedSeat      string
	selectedSeatPrice float64
	layout            *models.CabinLayoutConfig
	bookings          []models.ExistingBooking
	seatmapError      string

	bookingID         string
	boardingPassStyle string
	submitting        bool
}

// NewSession starts a wizard on the flight selection step.
func NewSession(b Backend) *Session {
	return &Session{
		backend:           b,
		current:           StepFlightSelect,
		maxReached:        StepFlightSelect,
		services:          ancillary.NewSelection(),
		boardingPassStyle: models.DefaultBoardingPassStyle,
	}
}

func (s *Session) Step() Step                { return s.current }
func (s *Session) SelectedFlight() string    { return s.selectedFlight }
func (s *Session) BookingID() string         { return s.bookingID }
func (s *Session) BoardingPassStyle() string { return s.boardingPassStyle }

// Complete reports whether the booking has been submitted.
func (s *Session) Complete() bool {
	return s.current == StepReceipt
}

// Prefill records the logged-in user and fills empty passenger fields from the profile.
func (s *Session) Prefill(user *models.User) {
	s.user = user
	if user == nil {
		return
	}
	if s.form.Name == "" {
		s.form.Name = user.Nickname
	}
	if s.form.DiscordID == "" {
		s.form.DiscordID = user.SocialID
	}
	if s.form.UserID == "" {
		s.form.UserID = user.VirtualID
	}
}

// SelectFlight picks the flight to book and captures its boarding pass style.
// Choosing a different flight drops everything derived from the previous one.
func (s *Session) SelectFlight(ctx context.Context, flightNumber string) error {
	if err := s.mutable(s.current); err != nil {
		return err
	}
	if s.current != StepFlightSelect {
		return reject(s.current, s.current, ErrFlightLocked)
	}
	if flightNumber == "" {
		return reject(s.current, StepPassengerInfo, ErrNoFlightSelected)
	}

	details, err := s.backend.Flight(ctx, flightNumber)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return reject(s.current, s.current, ErrFlightNotFound)
		}
		return err
	}

	if flightNumber != s.selectedFlight {
		s.resetFlightState()
	}
	s.selectedFlight = flightNumber
	s.flightDetails = details
	s.boardingPassStyle = models.DefaultBoardingPassStyle
	if details.BoardingPassDefault != "" {
		s.boardingPassStyle = details.BoardingPassDefault
	}
	return nil
}

func (s *Session) resetFlightState() {
	s.offers = nil
	s.services = ancillary.NewSelection()
	s.selectedSeat = ""
	s.selectedSeatPrice = 0
	s.layout = nil
	s.bookings = nil
	s.seatmapError = ""
}

// SetPassengerForm replaces the draft passenger details.
func (s *Session) SetPassengerForm(info models.PassengerInfo) error {
	if err := s.mutable(s.current); err != nil {
		return err
	}
	if s.current != StepPassengerInfo {
		return reject(s.current, s.current, ErrPassengerLocked)
	}
	s.form = info
	return nil
}

// GoTo moves to the requested step if the transition table allows it, then
// runs the entry effects of the target step.
func (s *Session) GoTo(ctx context.Context, to Step) error {
	from := s.current
	if !to.Valid() {
		return reject(from, to, ErrInvalidStep)
	}
	if s.submitting {
		return reject(from, to, ErrSubmitInFlight)
	}
	if err := transitions[transition{from, to}](s); err != nil {
		return reject(from, to, err)
	}

	// the form is only editable on its own step, so leaving it in either
	// direction fixes the details used by the summary and the booking
	if from == StepPassengerInfo && to != from {
		s.passengerInfo = s.form
	}
	switch to {
	case StepServices:
		s.loadOffers(ctx)
	case StepSeatSelect:
		if s.layout == nil || s.seatmapError != "" {
			s.loadSeatmap(ctx)
		}
	}

	s.current = to
	if to > s.maxReached {
		s.maxReached = to
	}
	return nil
}

// Next advances one step.
func (s *Session) Next(ctx context.Context) error {
	return s.GoTo(ctx, s.current+1)
}

// Back returns to the previous step.
func (s *Session) Back(ctx context.Context) error {
	if s.current == StepFlightSelect {
		return reject(s.current, s.current, ErrInvalidStep)
	}
	return s.GoTo(ctx, s.current-1)
}

// loadOffers resolves the flight's services against the catalog. A failed
// catalog fetch still offers every service, at price 0.
func (s *Session) loadOffers(ctx context.Context) {
	if s.flightDetails == nil {
		s.offers = nil
		return
	}
	configs, err := s.backend.FlightConfigs(ctx, models.ConfigService)
	if err != nil {
		configs = nil
	}
	s.offers = ancillary.ResolveOffers(s.flightDetails.PaxService, ancillary.Catalog(configs))
}

// loadSeatmap fetches the layout and occupancy. Failures are kept as the seat
// map's error and retried the next time the seat step is entered.
func (s *Session) loadSeatmap(ctx context.Context) {
	s.seatmapError = ""
	if s.flightDetails == nil || s.flightDetails.Seatmap == "" {
		s.seatmapError = MsgNoSeatmap
		return
	}

	configs, err := s.backend.FlightConfigs(ctx, models.ConfigCabinLayout)
	if err != nil {
		s.seatmapError = err.Error()
		return
	}
	layout, err := seatmap.FindLayout(configs, s.flightDetails.Seatmap)
	if err != nil {
		s.seatmapError = err.Error()
		return
	}
	bookings, err := s.backend.FlightBookings(ctx, s.selectedFlight)
	if err != nil {
		s.seatmapError = err.Error()
		return
	}

	s.layout = layout
	s.bookings = bookings
	s.repriceSeat()
}

// repriceSeat keeps the selected seat consistent with the loaded layout.
func (s *Session) repriceSeat() {
	if s.selectedSeat == "" {
		return
	}
	model := seatmap.New(s.layout, s.bookings)
	seat, ok := model.Lookup(s.selectedSeat)
	if !ok || seat.Status != seatmap.Available {
		s.selectedSeat = ""
		s.selectedSeatPrice = 0
		return
	}
	s.selectedSeatPrice = seat.Price
}

// ToggleService adds or removes an offered service and reports whether it is
// now selected. The price is taken from the current offer.
func (s *Session) ToggleService(name string) (bool, error) {
	if err := s.mutable(s.current); err != nil {
		return false, err
	}
	if s.current != StepServices {
		return false, reject(s.current, s.current, ErrServicesLocked)
	}
	for _, offer := range s.offers {
		if offer.Name == name {
			return s.services.Toggle(name, offer.Price), nil
		}
	}
	if s.services.Contains(name) {
		return s.services.Toggle(name, 0), nil
	}
	return false, ErrUnknownService
}

// RemoveService drops a service from the selection if present.
func (s *Session) RemoveService(name string) error {
	if err := s.mutable(s.current); err != nil {
		return err
	}
	if s.current != StepServices {
		return reject(s.current, s.current, ErrServicesLocked)
	}
	s.services.Remove(name)
	return nil
}

// SelectSeat replaces the selected seat. Seats that are not available, or
// not part of the loaded layout, are ignored and false is returned.
func (s *Session) SelectSeat(seatID string) (bool, error) {
	if err := s.mutable(s.current); err != nil {
		return false, err
	}
	if s.current != StepSeatSelect {
		return false, reject(s.current, s.current, ErrSeatLocked)
	}
	if s.layout == nil {
		return false, nil
	}
	seat, ok := seatmap.New(s.layout, s.bookings).Lookup(seatID)
	if !ok || seat.Status != seatmap.Available {
		return false, nil
	}
	s.selectedSeat = seat.ID
	s.selectedSeatPrice = seat.Price
	return true, nil
}

// SeatMap renders the loaded layout, or the reason it could not be loaded.
func (s *Session) SeatMap() seatmap.Map {
	if s.seatmapError != "" {
		return seatmap.Map{Error: s.seatmapError}
	}
	if s.layout == nil {
		return seatmap.Map{}
	}
	return seatmap.New(s.layout, s.bookings).Render()
}

// Summary is the read-only confirmation view.
type Summary struct {
	Flight        *models.FlightSummary    `json:"flight"`
	Passenger     models.PassengerInfo     `json:"passenger"`
	Services      []models.SelectedService `json:"services"`
	Seat          string                   `json:"seat"`
	CabinClass    string                   `json:"cabinClass"`
	SeatPrice     float64                  `json:"seatPrice"`
	ServicesTotal float64                  `json:"servicesTotal"`
	Total         float64                  `json:"total"`
}

// Summary derives the confirmation totals. It needs a selected seat.
func (s *Session) Summary() (Summary, error) {
	if s.selectedSeat == "" {
		return Summary{}, ErrNoSeatSelected
	}
	servicesTotal := s.services.Total()
	return Summary{
		Flight:        s.flightDetails,
		Passenger:     s.passengerInfo,
		Services:      s.services.Items(),
		Seat:          s.selectedSeat,
		CabinClass:    seatmap.ClassFor(s.layout, s.selectedSeat),
		SeatPrice:     s.selectedSeatPrice,
		ServicesTotal: servicesTotal,
		Total:         s.selectedSeatPrice + servicesTotal,
	}, nil
}

// Submit posts the booking. On failure the session stays on Confirm and the
// backend error is returned unchanged. On success the booking id is recorded
// and the session enters Receipt.
func (s *Session) Submit(ctx context.Context) error {
	if s.current == StepReceipt {
		return reject(s.current, StepReceipt, ErrSessionComplete)
	}
	if s.current != StepConfirm {
		return reject(s.current, StepReceipt, ErrNotConfirming)
	}
	if s.submitting {
		return reject(s.current, StepReceipt, ErrSubmitInFlight)
	}
	if !formComplete(s.passengerInfo) {
		return reject(s.current, StepReceipt, ErrPassengerIncomplete)
	}
	if s.selectedSeat == "" {
		return reject(s.current, StepReceipt, ErrNoSeatSelected)
	}

	s.submitting = true
	defer func() { s.submitting = false }()

	confirmation, err := s.backend.CreateBooking(ctx, s.bookingRequest())
	if err != nil {
		return err
	}

	s.bookingID = confirmation.BookingID
	s.current = StepReceipt
	s.maxReached = StepReceipt
	return nil
}

func (s *Session) bookingRequest() models.BookingRequest {
	userID := models.AnonymousUserID
	if s.user != nil {
		userID = s.user.ID
	}
	return models.BookingRequest{
		FlightNumber:  s.selectedFlight,
		Seat:          s.selectedSeat,
		ServeClass:    seatmap.ClassFor(s.layout, s.selectedSeat),
		PaxService:    s.services.Names(),
		UserID:        userID,
		BoardingPass:  s.boardingPassStyle,
		Note:          s.passengerInfo.SpecialRequests,
		PassengerName: s.passengerInfo.Name,
		SocialID:      s.passengerInfo.DiscordID,
		VirtualID:     s.passengerInfo.UserID,
	}
}

// mutable refuses edits once the session is complete or while a submission is running.
func (s *Session) mutable(at Step) error {
	switch {
	case at == StepReceipt:
		return reject(at, at, ErrSessionComplete)
	case s.submitting:
		return reject(at, at, ErrSubmitInFlight)
	}
	return nil
}

func formComplete(p models.PassengerInfo) bool {
	return p.Name != "" && p.DiscordID != "" && p.UserID != ""
}

// IsValidation reports whether err is a request the session cannot act on,
// as opposed to a refused transition or a backend failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnknownService)
}
