package service

import (
	"errors"
	"net/http"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/boardingpass"
	"booking-wizard/internal/database"
	"booking-wizard/internal/temporal/workflows"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/temporal"
)

// Kind classifies a failed session operation.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindRejected
	KindNotFound
	KindClosed
	KindBackend
	KindUnavailable
)

// Error is returned by every WizardService operation that fails for a reason
// the caller should see. Message is user-facing.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the response status for the error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindRejected, KindClosed:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindBackend:
		if e.StatusCode >= 400 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsError unwraps err into an *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

const (
	msgSessionNotFound = "booking session not found"
	msgSessionClosed   = "booking session is no longer active"
)

// toError translates workflow, registry and backend failures into *Error.
func toError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case workflows.ErrTypeRejected:
			return &Error{Kind: KindRejected, Message: appErr.Message(), Err: err}
		case workflows.ErrTypeInvalid:
			return &Error{Kind: KindInvalid, Message: appErr.Message(), Err: err}
		case workflows.ErrTypeClosed:
			return &Error{Kind: KindClosed, Message: appErr.Message(), Err: err}
		case workflows.ErrTypeUnavailable:
			return &Error{Kind: KindUnavailable, Message: appErr.Message(), Err: err}
		case workflows.ErrTypeBackend:
			svcErr := &Error{Kind: KindBackend, Message: appErr.Message(), Err: err}
			var apiErr backend.APIError
			if appErr.Details(&apiErr) == nil {
				svcErr.StatusCode = apiErr.StatusCode
			}
			return svcErr
		}
	}

	if apiErr, ok := backend.AsAPIError(err); ok {
		return &Error{Kind: KindBackend, Message: apiErr.Message, StatusCode: apiErr.StatusCode, Err: err}
	}

	switch {
	case errors.Is(err, database.ErrSessionNotFound):
		return &Error{Kind: KindNotFound, Message: msgSessionNotFound, Err: err}
	case errors.Is(err, database.ErrSessionClosed):
		return &Error{Kind: KindClosed, Message: msgSessionClosed, Err: err}
	case errors.Is(err, boardingpass.ErrNoBooking):
		return &Error{Kind: KindRejected, Message: err.Error(), Err: err}
	case errors.Is(err, boardingpass.ErrInvalidFormat):
		return &Error{Kind: KindInvalid, Message: err.Error(), Err: err}
	}

	var queryFailed *serviceerror.QueryFailed
	if errors.As(err, &queryFailed) {
		return &Error{Kind: KindRejected, Message: queryFailed.Message, Err: err}
	}
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		// the workflow finished between the registry read and the call
		return &Error{Kind: KindClosed, Message: msgSessionClosed, Err: err}
	}

	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}
