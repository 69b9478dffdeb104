package activities

import (
	"context"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/models"

	"go.temporal.io/sdk/temporal"
)

// ErrTypeBackendRejected marks a non-success reply from the airline backend.
// The *backend.APIError travels as the error details.
const ErrTypeBackendRejected = "BackendRejected"

type BackendActivities struct {
	Client *backend.Client
}

func NewBackendActivities(client *backend.Client) *BackendActivities {
	return &BackendActivities{Client: client}
}

// Flight resolves a flight from the schedule
func (a *BackendActivities) Flight(ctx context.Context, flightNumber string) (*models.FlightSummary, error) {
	flight, err := a.Client.Flight(ctx, flightNumber)
	return flight, activityError(err)
}

// FlightBookings loads seat occupancy for a flight
func (a *BackendActivities) FlightBookings(ctx context.Context, flightNumber string) ([]models.ExistingBooking, error) {
	bookings, err := a.Client.FlightBookings(ctx, flightNumber)
	return bookings, activityError(err)
}

// FlightConfigs loads cabin layouts or the service catalog
func (a *BackendActivities) FlightConfigs(ctx context.Context, kind models.ConfigKind) ([]models.FlightConfig, error) {
	configs, err := a.Client.FlightConfigs(ctx, kind)
	return configs, activityError(err)
}

// CreateBooking submits the booking record
func (a *BackendActivities) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	confirmation, err := a.Client.CreateBooking(ctx, req)
	return confirmation, activityError(err)
}

// activityError turns a backend rejection into a non-retryable application
// error so the message reaches the workflow verbatim.
func activityError(err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		return temporal.NewNonRetryableApplicationError(apiErr.Message, ErrTypeBackendRejected, nil, *apiErr)
	}
	return err
}
