package workflows

import (
	"context"
	"errors"
	"time"

	"booking-wizard/internal/models"
	"booking-wizard/internal/temporal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

type workflowContextKey struct{}

// withWorkflowContext carries the calling handler's workflow context through
// the wizard, which only knows context.Context.
func withWorkflowContext(ctx workflow.Context) context.Context {
	return context.WithValue(context.Background(), workflowContextKey{}, ctx)
}

// activityBackend satisfies wizard.Backend by running each call as an activity.
// The airline API is called once per action, never retried.
type activityBackend struct {
	timeout time.Duration
}

var backendActivities *activities.BackendActivities

func (b activityBackend) execute(ctx context.Context, activity interface{}, result interface{}, args ...interface{}) error {
	wctx, ok := ctx.Value(workflowContextKey{}).(workflow.Context)
	if !ok {
		return errors.New("backend call made outside a workflow handler")
	}
	wctx = workflow.WithActivityOptions(wctx, workflow.ActivityOptions{
		StartToCloseTimeout: b.timeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	return backendError(workflow.ExecuteActivity(wctx, activity, args...).Get(wctx, result))
}

func (b activityBackend) Flight(ctx context.Context, flightNumber string) (*models.FlightSummary, error) {
	var flight models.FlightSummary
	if err := b.execute(ctx, backendActivities.Flight, &flight, flightNumber); err != nil {
		return nil, err
	}
	return &flight, nil
}

func (b activityBackend) FlightBookings(ctx context.Context, flightNumber string) ([]models.ExistingBooking, error) {
	var bookings []models.ExistingBooking
	if err := b.execute(ctx, backendActivities.FlightBookings, &bookings, flightNumber); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (b activityBackend) FlightConfigs(ctx context.Context, kind models.ConfigKind) ([]models.FlightConfig, error) {
	var configs []models.FlightConfig
	if err := b.execute(ctx, backendActivities.FlightConfigs, &configs, kind); err != nil {
		return nil, err
	}
	return configs, nil
}

func (b activityBackend) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	var confirmation models.BookingConfirmation
	if err := b.execute(ctx, backendActivities.CreateBooking, &confirmation, req); err != nil {
		return nil, err
	}
	return &confirmation, nil
}
