package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/boardingpass"
	"booking-wizard/internal/models"
	"booking-wizard/internal/seatmap"
	"booking-wizard/internal/temporal/workflows"
	"booking-wizard/internal/wizard"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

const workflowIDPrefix = "wizard-"

// WizardService drives booking wizard sessions on behalf of the HTTP API
type WizardService interface {
	Flights(ctx context.Context, query string) ([]models.FlightSummary, error)
	StartSession(ctx context.Context, cookies []*http.Cookie) (*models.StartSessionResponse, error)
	GetState(ctx context.Context, sessionID string) (*workflows.SessionState, error)
	Cancel(ctx context.Context, sessionID string) (*workflows.SessionState, error)
	SelectFlight(ctx context.Context, sessionID, flightNumber string) (*workflows.SessionState, error)
	SetPassenger(ctx context.Context, sessionID string, info models.PassengerInfo) (*workflows.SessionState, error)
	GoTo(ctx context.Context, sessionID string, step int) (*workflows.SessionState, error)
	ToggleService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error)
	RemoveService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error)
	SelectSeat(ctx context.Context, sessionID, seatID string) (*workflows.SessionState, error)
	Summary(ctx context.Context, sessionID string) (*wizard.Summary, error)
	SeatMap(ctx context.Context, sessionID string) (*seatmap.Map, error)
	Submit(ctx context.Context, sessionID string) (*workflows.SessionState, error)
	BoardingPass(ctx context.Context, sessionID, format string, download bool) (*boardingpass.Artifact, error)
}

// SessionStore is the session registry
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.WizardSession) error
	GetSession(ctx context.Context, sessionID string) (*models.WizardSession, error)
}

// Options tune the sessions the service starts
type Options struct {
	TaskQueue      string
	IdleTimeout    time.Duration
	BackendTimeout time.Duration
}

type wizardService struct {
	temporalClient client.Client
	store          SessionStore
	backend        *backend.Client
	passes         *boardingpass.Retriever
	opts           Options
	logger         *zap.Logger
}

// NewWizardService creates a WizardService backed by Temporal workflows
func NewWizardService(temporalClient client.Client, store SessionStore, backendClient *backend.Client,
	passes *boardingpass.Retriever, opts Options, logger *zap.Logger) WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &wizardService{
		temporalClient: temporalClient,
		store:          store,
		backend:        backendClient,
		passes:         passes,
		opts:           opts,
		logger:         logger,
	}
}

func (s *wizardService) Flights(ctx context.Context, query string) ([]models.FlightSummary, error) {
	flights, err := s.backend.Schedule(ctx)
	if err != nil {
		return nil, toError(err)
	}
	return FilterFlights(flights, query), nil
}

// StartSession starts a wizard workflow. The user behind the request cookies,
// if any, prefills the passenger form.
func (s *wizardService) StartSession(ctx context.Context, cookies []*http.Cookie) (*models.StartSessionResponse, error) {
	user, err := s.backend.WithCookies(cookies).CurrentUser(ctx)
	if err != nil {
		// anonymous booking is still possible
		s.logger.Warn("Failed to load current user", zap.Error(err))
	}

	sessionID := uuid.New().String()
	workflowOptions := client.StartWorkflowOptions{
		ID:        workflowIDPrefix + sessionID,
		TaskQueue: s.opts.TaskQueue,
	}
	input := workflows.WizardInput{
		SessionID:      sessionID,
		User:           user,
		IdleTimeout:    s.opts.IdleTimeout,
		BackendTimeout: s.opts.BackendTimeout,
	}

	we, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.WizardWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	session := &models.WizardSession{
		SessionID:         sessionID,
		WorkflowID:        we.GetID(),
		RunID:             we.GetRunID(),
		Status:            models.SessionActive,
		Step:              int(wizard.StepFlightSelect),
		BoardingPassStyle: models.DefaultBoardingPassStyle,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		if cancelErr := s.temporalClient.CancelWorkflow(ctx, we.GetID(), we.GetRunID()); cancelErr != nil {
			s.logger.Error("Failed to cancel unregistered session", zap.String("session_id", sessionID), zap.Error(cancelErr))
		}
		return nil, err
	}

	s.logger.Info("Session started", zap.String("session_id", sessionID), zap.Bool("signed_in", user != nil))
	return &models.StartSessionResponse{SessionID: sessionID, WorkflowID: we.GetID()}, nil
}

// GetState queries the session. Once the workflow is gone the registry row
// is the best remaining answer.
func (s *wizardService) GetState(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toError(err)
	}

	var state workflows.SessionState
	if err := s.query(ctx, session, workflows.QueryState, &state); err != nil {
		if session.Status == models.SessionActive {
			return nil, toError(err)
		}
		s.logger.Debug("Serving session state from registry", zap.String("session_id", sessionID), zap.Error(err))
		return registryState(session), nil
	}
	return &state, nil
}

func (s *wizardService) Cancel(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateCancel)
}

func (s *wizardService) SelectFlight(ctx context.Context, sessionID, flightNumber string) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateSelectFlight, flightNumber)
}

func (s *wizardService) SetPassenger(ctx context.Context, sessionID string, info models.PassengerInfo) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdatePassenger, info)
}

func (s *wizardService) GoTo(ctx context.Context, sessionID string, step int) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateGoTo, step)
}

func (s *wizardService) ToggleService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateToggleService, name)
}

func (s *wizardService) RemoveService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateRemoveService, name)
}

func (s *wizardService) SelectSeat(ctx context.Context, sessionID, seatID string) (*workflows.SessionState, error) {
	return s.update(ctx, sessionID, workflows.UpdateSelectSeat, seatID)
}

func (s *wizardService) Submit(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	state, err := s.update(ctx, sessionID, workflows.UpdateSubmit)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Booking submitted", zap.String("session_id", sessionID), zap.String("booking_id", state.BookingID))
	return state, nil
}

func (s *wizardService) Summary(ctx context.Context, sessionID string) (*wizard.Summary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toError(err)
	}
	var summary wizard.Summary
	if err := s.query(ctx, session, workflows.QuerySummary, &summary); err != nil {
		return nil, toError(err)
	}
	return &summary, nil
}

func (s *wizardService) SeatMap(ctx context.Context, sessionID string) (*seatmap.Map, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toError(err)
	}
	var m seatmap.Map
	if err := s.query(ctx, session, workflows.QuerySeatMap, &m); err != nil {
		return nil, toError(err)
	}
	return &m, nil
}

// BoardingPass fetches the boarding pass of the session's booking. Without
// download the image preview is returned.
func (s *wizardService) BoardingPass(ctx context.Context, sessionID, format string, download bool) (*boardingpass.Artifact, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toError(err)
	}

	var bookingID string
	if session.BookingID != nil {
		bookingID = *session.BookingID
	}

	if !download {
		data, err := s.passes.Preview(ctx, bookingID, session.BoardingPassStyle)
		if err != nil {
			return nil, toError(err)
		}
		return &boardingpass.Artifact{ContentType: boardingpass.ContentType(models.FormatPNG), Data: data}, nil
	}

	if format == "" {
		format = models.FormatPNG
	}
	artifact, err := s.passes.Download(ctx, bookingID, session.BoardingPassStyle, format)
	if err != nil {
		return nil, toError(err)
	}
	return artifact, nil
}

// update sends one user action to the session workflow and waits for its outcome.
func (s *wizardService) update(ctx context.Context, sessionID, name string, args ...interface{}) (*workflows.SessionState, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toError(err)
	}
	if session.Status != models.SessionActive {
		return nil, &Error{Kind: KindClosed, Message: "booking session is " + session.Status}
	}

	handle, err := s.temporalClient.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		WorkflowID:   session.WorkflowID,
		RunID:        session.RunID,
		UpdateName:   name,
		Args:         args,
		WaitForStage: client.WorkflowUpdateStageCompleted,
	})
	if err != nil {
		return nil, toError(err)
	}

	var state workflows.SessionState
	if err := handle.Get(ctx, &state); err != nil {
		s.logger.Debug("Session action refused",
			zap.String("session_id", sessionID), zap.String("action", name), zap.Error(err))
		return nil, toError(err)
	}
	return &state, nil
}

func (s *wizardService) query(ctx context.Context, session *models.WizardSession, queryType string, out interface{}) error {
	resp, err := s.temporalClient.QueryWorkflow(ctx, session.WorkflowID, session.RunID, queryType)
	if err != nil {
		return err
	}
	if err := resp.Get(out); err != nil {
		return fmt.Errorf("failed to decode %s query: %w", queryType, err)
	}
	return nil
}

func registryState(session *models.WizardSession) *workflows.SessionState {
	state := &workflows.SessionState{SessionID: session.SessionID, Status: session.Status}
	state.Step = wizard.Step(session.Step)
	state.StepName = state.Step.String()
	state.MaxStep = state.Step
	state.BoardingPassStyle = session.BoardingPassStyle
	state.UserID = models.AnonymousUserID
	if session.FlightNumber != nil {
		state.SelectedFlight = *session.FlightNumber
	}
	if session.BookingID != nil {
		state.BookingID = *session.BookingID
	}
	return state
}
