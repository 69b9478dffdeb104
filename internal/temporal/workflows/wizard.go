package workflows

import (
	"context"
	"time"

	"booking-wizard/internal/models"
	"booking-wizard/internal/seatmap"
	"booking-wizard/internal/temporal/activities"
	"booking-wizard/internal/wizard"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	UpdateSelectFlight  = "selectFlight"
	UpdatePassenger     = "setPassenger"
	UpdateGoTo          = "goToStep"
	UpdateToggleService = "toggleService"
	UpdateRemoveService = "removeService"
	UpdateSelectSeat    = "selectSeat"
	UpdateSubmit        = "submit"
	UpdateCancel        = "cancel"
	QueryState          = "state"
	QuerySummary        = "summary"
	QuerySeatMap        = "seatMap"
)

// Defaults used when the input leaves a duration unset
const (
	DefaultIdleTimeout    = 30 * time.Minute
	DefaultBackendTimeout = 30 * time.Second
)

// WizardInput starts one booking session
type WizardInput struct {
	SessionID      string        `json:"sessionId"`
	User           *models.User  `json:"user,omitempty"`
	IdleTimeout    time.Duration `json:"idleTimeout"`
	BackendTimeout time.Duration `json:"backendTimeout"`
}

// SessionState is returned by the state query and by every update
type SessionState struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	wizard.Snapshot
}

// WizardResult is the final state of a finished session
type WizardResult struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	BookingID string `json:"bookingId,omitempty"`
}

var sessionActivities *activities.SessionActivities

// WizardWorkflow hosts a booking wizard session. Each user action is an
// update that returns the new state. The session ends on a completed booking,
// on cancellation, or after IdleTimeout without any action.
func WizardWorkflow(ctx workflow.Context, input WizardInput) (*WizardResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("WizardWorkflow started", "sessionID", input.SessionID)

	idleTimeout := input.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	backendTimeout := input.BackendTimeout
	if backendTimeout <= 0 {
		backendTimeout = DefaultBackendTimeout
	}

	session := wizard.NewSession(activityBackend{timeout: backendTimeout})
	session.Prefill(input.User)
	status := models.SessionActive
	busy := false

	// Registry writes may be retried; they never touch the airline API
	registryCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})

	state := func() SessionState {
		return SessionState{SessionID: input.SessionID, Status: status, Snapshot: session.Snapshot()}
	}

	recordProgress := func() {
		progress := models.SessionProgress{
			SessionID:         input.SessionID,
			Status:            status,
			Step:              int(session.Step()),
			FlightNumber:      session.SelectedFlight(),
			BookingID:         session.BookingID(),
			BoardingPassStyle: session.BoardingPassStyle(),
		}
		// disconnected so the final status is written even when the workflow is cancelled
		rctx, _ := workflow.NewDisconnectedContext(registryCtx)
		err := workflow.ExecuteActivity(rctx, sessionActivities.RecordProgress, progress).Get(rctx, nil)
		if err != nil {
			logger.Warn("Failed to record session progress", "sessionID", input.SessionID, "error", err)
		}
	}

	touches := workflow.NewBufferedChannel(ctx, 1)
	touch := func() {
		touches.SendAsync(true)
	}

	// run serialises actions so each one sees the result of the previous.
	run := func(ctx workflow.Context, name string, action func(context.Context) error) (SessionState, error) {
		if err := workflow.Await(ctx, func() bool { return !busy }); err != nil {
			return SessionState{}, err
		}
		if status != models.SessionActive {
			return SessionState{}, closedError(status)
		}
		busy = true
		defer func() { busy = false }()
		defer touch()

		if err := action(withWorkflowContext(ctx)); err != nil {
			logger.Info("Action refused", "sessionID", input.SessionID, "action", name, "error", err)
			return SessionState{}, updateError(err)
		}
		if session.Complete() {
			status = models.SessionCompleted
		}
		recordProgress()
		return state(), nil
	}

	handlers := []struct {
		name    string
		handler interface{}
	}{
		{UpdateSelectFlight, func(ctx workflow.Context, flightNumber string) (SessionState, error) {
			return run(ctx, UpdateSelectFlight, func(c context.Context) error {
				return session.SelectFlight(c, flightNumber)
			})
		}},
		{UpdatePassenger, func(ctx workflow.Context, info models.PassengerInfo) (SessionState, error) {
			return run(ctx, UpdatePassenger, func(context.Context) error {
				return session.SetPassengerForm(info)
			})
		}},
		{UpdateGoTo, func(ctx workflow.Context, step int) (SessionState, error) {
			return run(ctx, UpdateGoTo, func(c context.Context) error {
				return session.GoTo(c, wizard.Step(step))
			})
		}},
		{UpdateToggleService, func(ctx workflow.Context, name string) (SessionState, error) {
			return run(ctx, UpdateToggleService, func(context.Context) error {
				_, err := session.ToggleService(name)
				return err
			})
		}},
		{UpdateRemoveService, func(ctx workflow.Context, name string) (SessionState, error) {
			return run(ctx, UpdateRemoveService, func(context.Context) error {
				return session.RemoveService(name)
			})
		}},
		{UpdateSelectSeat, func(ctx workflow.Context, seatID string) (SessionState, error) {
			return run(ctx, UpdateSelectSeat, func(context.Context) error {
				_, err := session.SelectSeat(seatID)
				return err
			})
		}},
		{UpdateSubmit, func(ctx workflow.Context) (SessionState, error) {
			return run(ctx, UpdateSubmit, func(c context.Context) error {
				return session.Submit(c)
			})
		}},
		{UpdateCancel, func(ctx workflow.Context) (SessionState, error) {
			return run(ctx, UpdateCancel, func(context.Context) error {
				status = models.SessionCancelled
				return nil
			})
		}},
	}
	for _, h := range handlers {
		if err := workflow.SetUpdateHandler(ctx, h.name, h.handler); err != nil {
			return nil, err
		}
	}

	if err := workflow.SetQueryHandler(ctx, QueryState, func() (SessionState, error) {
		return state(), nil
	}); err != nil {
		return nil, err
	}
	if err := workflow.SetQueryHandler(ctx, QuerySummary, func() (wizard.Summary, error) {
		return session.Summary()
	}); err != nil {
		return nil, err
	}
	if err := workflow.SetQueryHandler(ctx, QuerySeatMap, func() (seatmap.Map, error) {
		return session.SeatMap(), nil
	}); err != nil {
		return nil, err
	}

	// Main loop: every action restarts the inactivity timer
	for status == models.SessionActive {
		timerCtx, cancelTimer := workflow.WithCancel(ctx)
		timerFuture := workflow.NewTimer(timerCtx, idleTimeout)

		selector := workflow.NewSelector(ctx)
		selector.AddReceive(touches, func(c workflow.ReceiveChannel, more bool) {
			var touched bool
			c.Receive(ctx, &touched)
		})
		selector.AddFuture(timerFuture, func(f workflow.Future) {
			if err := f.Get(ctx, nil); err != nil {
				return
			}
			if busy {
				// an action is still running, wait for it
				return
			}
			logger.Info("Session expired after inactivity", "sessionID", input.SessionID)
			status = models.SessionExpired
		})
		selector.Select(ctx)
		cancelTimer()

		if ctx.Err() != nil && status == models.SessionActive {
			status = models.SessionCancelled
			recordProgress()
		}
	}

	if status == models.SessionExpired {
		recordProgress()
	}

	// let in-flight updates return before the workflow completes
	if err := workflow.Await(ctx, func() bool { return workflow.AllHandlersFinished(ctx) }); err != nil {
		logger.Warn("Stopped waiting for handlers", "sessionID", input.SessionID, "error", err)
	}

	logger.Info("WizardWorkflow completed", "sessionID", input.SessionID, "status", status)
	return &WizardResult{SessionID: input.SessionID, Status: status, BookingID: session.BookingID()}, nil
}
