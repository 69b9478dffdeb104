package workflows

import (
	"errors"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/temporal/activities"
	"booking-wizard/internal/wizard"

	"go.temporal.io/sdk/temporal"
)

// Error types reported by wizard updates
const (
	ErrTypeRejected    = "WizardRejected"
	ErrTypeInvalid     = "WizardInvalid"
	ErrTypeBackend     = activities.ErrTypeBackendRejected
	ErrTypeUnavailable = "BackendUnavailable"
	ErrTypeClosed      = "SessionClosed"
)

// MsgBackendUnavailable replaces transport failures that carry no backend message.
const MsgBackendUnavailable = "Booking service is unavailable, please try again"

// Rejection is the detail attached to a refused transition.
type Rejection struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Reason string `json:"reason"`
}

// updateError converts a wizard failure into an application error whose
// message is safe to show to the passenger.
func updateError(err error) error {
	var rejection *wizard.RejectionError
	if errors.As(err, &rejection) {
		return temporal.NewNonRetryableApplicationError(rejection.Error(), ErrTypeRejected, nil,
			Rejection{From: int(rejection.From), To: int(rejection.To), Reason: rejection.Error()})
	}
	if wizard.IsValidation(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalid, nil)
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		return temporal.NewNonRetryableApplicationError(apiErr.Message, ErrTypeBackend, nil, *apiErr)
	}
	return temporal.NewNonRetryableApplicationError(MsgBackendUnavailable, ErrTypeUnavailable, err)
}

// backendError restores the *backend.APIError carried by a failed activity.
func backendError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeBackendRejected {
		var apiErr backend.APIError
		if appErr.Details(&apiErr) == nil {
			return &apiErr
		}
	}
	return err
}

func closedError(status string) error {
	return temporal.NewNonRetryableApplicationError("booking session is "+status, ErrTypeClosed, nil, status)
}
