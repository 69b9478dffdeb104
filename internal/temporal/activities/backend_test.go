package activities

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

func newBackendActivities(t *testing.T, handler http.HandlerFunc) *BackendActivities {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendActivities(backend.NewClient(srv.URL, srv.Client(), nil))
}

func TestCreateBooking_RejectionKeepsMessage(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newBackendActivities(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Seat already booked"}`))
	})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.CreateBooking, models.BookingRequest{FlightNumber: "AU101", Seat: "1A"})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeBackendRejected, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "Seat already booked", appErr.Message())

	var apiErr backend.APIError
	require.NoError(t, appErr.Details(&apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Seat already booked", apiErr.Message)
}

func TestCreateBooking_Success(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newBackendActivities(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"booking_id":"X7K2","message":"Booking created successfully"}`))
	})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.CreateBooking, models.BookingRequest{FlightNumber: "AU101", Seat: "1A"})
	require.NoError(t, err)

	var confirmation models.BookingConfirmation
	require.NoError(t, val.Get(&confirmation))
	assert.Equal(t, "X7K2", confirmation.BookingID)
}

func TestFlightConfigs(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newBackendActivities(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get/flight_configs/cabin_layout", r.URL.Path)
		w.Write([]byte(`{"success":true,"configs":[{"id":1,"name":"Default","type":"cabin_layout","data":{"classes":[]}}]}`))
	})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.FlightConfigs, models.ConfigCabinLayout)
	require.NoError(t, err)

	var configs []models.FlightConfig
	require.NoError(t, val.Get(&configs))
	require.Len(t, configs, 1)
	assert.Equal(t, "Default", configs[0].Name)
}

func TestActivityError_PassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, activityError(nil))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, activityError(plain))
}
