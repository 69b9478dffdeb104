package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/boardingpass"
	"booking-wizard/internal/database"
	"booking-wizard/internal/models"
	"booking-wizard/internal/temporal/workflows"
	"booking-wizard/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	sdkmocks "go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"
)

const testIdleTimeout = 10 * time.Minute

type memoryStore struct {
	sessions map[string]*models.WizardSession
	err      error
}

func newMemoryStore(sessions ...*models.WizardSession) *memoryStore {
	store := &memoryStore{sessions: make(map[string]*models.WizardSession)}
	for _, s := range sessions {
		store.sessions[s.SessionID] = s
	}
	return store
}

func (m *memoryStore) CreateSession(ctx context.Context, session *models.WizardSession) error {
	if m.err != nil {
		return m.err
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *memoryStore) GetSession(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return session, nil
}

func newBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return backend.NewClient(server.URL, server.Client(), nil)
}

func strPtr(s string) *string {
	return &s
}

func TestFilterFlights(t *testing.T) {
	flights := []models.FlightSummary{
		{FlightNumber: "AU101", Departure: "Sydney", Arrival: "Melbourne", Aircraft: "A320", Status: "Scheduled"},
		{FlightNumber: "NZ202", Departure: "Auckland", Arrival: "Sydney", Aircraft: "B787", Status: "Boarding"},
		{FlightNumber: "QF303", Departure: "Perth", Arrival: "Darwin", Aircraft: "B737", Status: "Delayed"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps all", "", []string{"AU101", "NZ202", "QF303"}},
		{"flight number ignores case", "au1", []string{"AU101"}},
		{"airport on either end", "SYDNEY", []string{"AU101", "NZ202"}},
		{"aircraft", "b7", []string{"NZ202", "QF303"}},
		{"status", "delayed", []string{"QF303"}},
		{"surrounding spaces", "  perth ", []string{"QF303"}},
		{"no match", "tokyo", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, f := range FilterFlights(flights, tt.query) {
				got = append(got, f.FlightNumber)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "rejected step change",
			err:        temporal.NewNonRetryableApplicationError("Please select a flight first", workflows.ErrTypeRejected, nil),
			wantKind:   KindRejected,
			wantMsg:    "Please select a flight first",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid input",
			err:        temporal.NewNonRetryableApplicationError("unknown service", workflows.ErrTypeInvalid, nil),
			wantKind:   KindInvalid,
			wantMsg:    "unknown service",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "backend message and status survive",
			err: temporal.NewNonRetryableApplicationError("Seat already booked", workflows.ErrTypeBackend, nil,
				backend.APIError{StatusCode: http.StatusBadRequest, Message: "Seat already booked"}),
			wantKind:   KindBackend,
			wantMsg:    "Seat already booked",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "backend without details",
			err:        temporal.NewNonRetryableApplicationError("Booking failed", workflows.ErrTypeBackend, nil),
			wantKind:   KindBackend,
			wantMsg:    "Booking failed",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "backend unreachable",
			err:        temporal.NewNonRetryableApplicationError(workflows.MsgBackendUnavailable, workflows.ErrTypeUnavailable, nil),
			wantKind:   KindUnavailable,
			wantMsg:    workflows.MsgBackendUnavailable,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "closed session",
			err:        temporal.NewNonRetryableApplicationError("booking session is COMPLETED", workflows.ErrTypeClosed, nil),
			wantKind:   KindClosed,
			wantMsg:    "booking session is COMPLETED",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown session",
			err:        fmt.Errorf("lookup: %w", database.ErrSessionNotFound),
			wantKind:   KindNotFound,
			wantMsg:    msgSessionNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no booking yet",
			err:        boardingpass.ErrNoBooking,
			wantKind:   KindRejected,
			wantMsg:    "No booking ID available",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "direct backend call",
			err:        &backend.APIError{StatusCode: http.StatusServiceUnavailable, Message: "Failed to load flights"},
			wantKind:   KindBackend,
			wantMsg:    "Failed to load flights",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "failed query",
			err:        serviceerror.NewQueryFailed("No seat selected"),
			wantKind:   KindRejected,
			wantMsg:    "No seat selected",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "workflow already gone",
			err:        serviceerror.NewNotFound("workflow execution already completed"),
			wantKind:   KindClosed,
			wantMsg:    msgSessionClosed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantKind:   KindInternal,
			wantMsg:    "boom",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcErr, ok := AsError(toError(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, svcErr.Kind)
			assert.Equal(t, tt.wantMsg, svcErr.Message)
			assert.Equal(t, tt.wantStatus, svcErr.HTTPStatus())
		})
	}
}

func TestStartSession(t *testing.T) {
	backendClient := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		w.Write([]byte(`{"id":42,"nickname":"Jane Doe","social_id":"123","virtual_id":"456"}`))
	})

	temporalClient := &sdkmocks.Client{}
	run := &sdkmocks.WorkflowRun{}
	run.On("GetID").Return("wizard-abc")
	run.On("GetRunID").Return("run-1")
	temporalClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything,
		mock.MatchedBy(func(input workflows.WizardInput) bool {
			return input.User != nil && input.User.ID == 42 && input.IdleTimeout == testIdleTimeout
		})).Return(run, nil).Once()

	store := newMemoryStore()
	svc := NewWizardService(temporalClient, store, backendClient, nil,
		Options{TaskQueue: "booking-wizard", IdleTimeout: testIdleTimeout}, nil)

	resp, err := svc.StartSession(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "wizard-abc", resp.WorkflowID)
	require.NotEmpty(t, resp.SessionID)

	session, err := store.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, "run-1", session.RunID)
	assert.Equal(t, models.DefaultBoardingPassStyle, session.BoardingPassStyle)

	temporalClient.AssertExpectations(t)
}

func TestUpdateRefusedOnClosedSession(t *testing.T) {
	temporalClient := &sdkmocks.Client{}
	store := newMemoryStore(&models.WizardSession{
		SessionID:  "s1",
		WorkflowID: "wizard-s1",
		Status:     models.SessionCompleted,
		BookingID:  strPtr("X7K2"),
	})
	svc := NewWizardService(temporalClient, store, nil, nil, Options{}, nil)

	_, err := svc.SelectSeat(context.Background(), "s1", "1A")
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindClosed, svcErr.Kind)
	assert.Equal(t, "booking session is COMPLETED", svcErr.Message)

	_, err = svc.Submit(context.Background(), "missing")
	svcErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, svcErr.Kind)

	temporalClient.AssertNotCalled(t, "UpdateWorkflow", mock.Anything, mock.Anything)
}

func TestGetStateFallsBackToRegistry(t *testing.T) {
	temporalClient := &sdkmocks.Client{}
	temporalClient.On("QueryWorkflow", mock.Anything, "wizard-s1", "run-1", workflows.QueryState).
		Return(nil, serviceerror.NewNotFound("workflow not found")).Once()

	store := newMemoryStore(&models.WizardSession{
		SessionID:         "s1",
		WorkflowID:        "wizard-s1",
		RunID:             "run-1",
		Status:            models.SessionCompleted,
		Step:              int(wizard.StepReceipt),
		FlightNumber:      strPtr("AU101"),
		BookingID:         strPtr("X7K2"),
		BoardingPassStyle: "kja",
	})
	svc := NewWizardService(temporalClient, store, nil, nil, Options{}, nil)

	state, err := svc.GetState(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, state.Status)
	assert.Equal(t, wizard.StepReceipt, state.Step)
	assert.Equal(t, "AU101", state.SelectedFlight)
	assert.Equal(t, "X7K2", state.BookingID)
	assert.Equal(t, "kja", state.BoardingPassStyle)

	temporalClient.AssertExpectations(t)
}

func TestBoardingPass(t *testing.T) {
	backendClient := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get/boarding_pass_pdf/X7K2/kja":
			w.Write([]byte("%PDF"))
		case "/api/get/boarding_pass/X7K2/kja":
			w.Write([]byte("PNG"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	store := newMemoryStore(
		&models.WizardSession{SessionID: "done", Status: models.SessionCompleted, BookingID: strPtr("X7K2"), BoardingPassStyle: "kja"},
		&models.WizardSession{SessionID: "open", Status: models.SessionActive, BoardingPassStyle: "kja"},
	)
	passes := boardingpass.NewRetriever(backendClient, nil, nil)
	svc := NewWizardService(&sdkmocks.Client{}, store, backendClient, passes, Options{}, nil)

	t.Run("download", func(t *testing.T) {
		artifact, err := svc.BoardingPass(context.Background(), "done", models.FormatPDF, true)
		require.NoError(t, err)
		assert.Equal(t, "boarding-pass-X7K2.pdf", artifact.FileName)
		assert.Equal(t, "application/pdf", artifact.ContentType)
		assert.Equal(t, []byte("%PDF"), artifact.Data)
	})

	t.Run("preview", func(t *testing.T) {
		artifact, err := svc.BoardingPass(context.Background(), "done", "", false)
		require.NoError(t, err)
		assert.Empty(t, artifact.FileName)
		assert.Equal(t, "image/png", artifact.ContentType)
		assert.Equal(t, []byte("PNG"), artifact.Data)
	})

	t.Run("no booking yet", func(t *testing.T) {
		_, err := svc.BoardingPass(context.Background(), "open", models.FormatPNG, true)
		svcErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindRejected, svcErr.Kind)
		assert.Equal(t, "No booking ID available", svcErr.Message)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := svc.BoardingPass(context.Background(), "done", "gif", true)
		svcErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindInvalid, svcErr.Kind)
	})
}
