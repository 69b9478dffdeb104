package wizard

import (
	"errors"
	"fmt"
)

// Step is a stage of the booking wizard, numbered as shown to the passenger.
type Step int

const (
	StepFlightSelect Step = iota + 1
	StepPassengerInfo
	StepServices
	StepSeatSelect
	StepConfirm
	StepReceipt
)

var stepNames = map[Step]string{
	StepFlightSelect:  "flight_select",
	StepPassengerInfo: "passenger_info",
	StepServices:      "services",
	StepSeatSelect:    "seat_select",
	StepConfirm:       "confirm",
	StepReceipt:       "receipt",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) Valid() bool {
	return s >= StepFlightSelect && s <= StepReceipt
}

// Rejection reasons
var (
	ErrNoFlightSelected    = errors.New("please select a flight first")
	ErrFlightNotFound      = errors.New("selected flight is not on the schedule")
	ErrFlightLocked        = errors.New("the flight can only be changed on the flight selection step")
	ErrPassengerIncomplete = errors.New("please fill in all required passenger information")
	ErrNoSeatSelected      = errors.New("please select a seat first")
	ErrStepLocked          = errors.New("step is not unlocked yet")
	ErrInvalidStep         = errors.New("unknown step")
	ErrSubmitRequired      = errors.New("the receipt is reached by completing the booking")
	ErrNotConfirming       = errors.New("bookings are submitted from the confirmation step")
	ErrSubmitInFlight      = errors.New("booking submission already in progress")
	ErrSessionComplete     = errors.New("booking session is complete")
	ErrUnknownService      = errors.New("service is not offered on this flight")
	ErrPassengerLocked     = errors.New("passenger details are edited on the passenger information step")
	ErrServicesLocked      = errors.New("services are chosen on the services step")
	ErrSeatLocked          = errors.New("seats are chosen on the seat selection step")
)

// RejectionError reports a refused transition. The session is unchanged.
type RejectionError struct {
	From Step
	To   Step
	Err  error
}

func (e *RejectionError) Error() string {
	return e.Err.Error()
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(from, to Step, err error) error {
	return &RejectionError{From: from, To: to, Err: err}
}

// IsRejection reports whether err is a refused transition or action.
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

type transition struct {
	from Step
	to   Step
}

// rule decides whether a transition may commit given the current session.
type rule func(s *Session) error

// transitions holds a rule for every (from, to) pair of steps.
var transitions = buildTransitions()

func buildTransitions() map[transition]rule {
	table := make(map[transition]rule)
	for from := StepFlightSelect; from <= StepReceipt; from++ {
		for to := StepFlightSelect; to <= StepReceipt; to++ {
			table[transition{from, to}] = ruleFor(from, to)
		}
	}
	return table
}

func ruleFor(from, to Step) rule {
	switch {
	case from == StepReceipt:
		return always(ErrSessionComplete)
	case to == StepReceipt:
		return always(ErrSubmitRequired)
	}

	var gates []rule
	gates = append(gates, unlocked(to))
	if to >= StepPassengerInfo {
		gates = append(gates, flightSelected)
	}
	if from == StepPassengerInfo && to > StepPassengerInfo {
		gates = append(gates, passengerComplete)
	}
	if to == StepConfirm {
		gates = append(gates, seatSelected)
	}

	return func(s *Session) error {
		for _, gate := range gates {
			if err := gate(s); err != nil {
				return err
			}
		}
		return nil
	}
}

func always(err error) rule {
	return func(*Session) error { return err }
}

// unlocked allows any step already reached and the one right after it.
func unlocked(to Step) rule {
	return func(s *Session) error {
		if to > s.maxReached+1 {
			return ErrStepLocked
		}
		return nil
	}
}

func flightSelected(s *Session) error {
	if s.selectedFlight == "" {
		return ErrNoFlightSelected
	}
	return nil
}

func passengerComplete(s *Session) error {
	if !formComplete(s.form) {
		return ErrPassengerIncomplete
	}
	return nil
}

func seatSelected(s *Session) error {
	if s.selectedSeat == "" {
		return ErrNoSeatSelected
	}
	return nil
}
