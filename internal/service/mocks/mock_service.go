package mocks

import (
	"context"
	"net/http"

	"booking-wizard/internal/boardingpass"
	"booking-wizard/internal/models"
	"booking-wizard/internal/seatmap"
	"booking-wizard/internal/temporal/workflows"
	"booking-wizard/internal/wizard"

	"github.com/stretchr/testify/mock"
)

// MockWizardService is a mock implementation of WizardService
type MockWizardService struct {
	mock.Mock
}

func (m *MockWizardService) Flights(ctx context.Context, query string) ([]models.FlightSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightSummary), args.Error(1)
}

func (m *MockWizardService) StartSession(ctx context.Context, cookies []*http.Cookie) (*models.StartSessionResponse, error) {
	args := m.Called(ctx, cookies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StartSessionResponse), args.Error(1)
}

func (m *MockWizardService) GetState(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID))
}

func (m *MockWizardService) Cancel(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID))
}

func (m *MockWizardService) SelectFlight(ctx context.Context, sessionID, flightNumber string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, flightNumber))
}

func (m *MockWizardService) SetPassenger(ctx context.Context, sessionID string, info models.PassengerInfo) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, info))
}

func (m *MockWizardService) GoTo(ctx context.Context, sessionID string, step int) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, step))
}

func (m *MockWizardService) ToggleService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, name))
}

func (m *MockWizardService) RemoveService(ctx context.Context, sessionID, name string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, name))
}

func (m *MockWizardService) SelectSeat(ctx context.Context, sessionID, seatID string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID, seatID))
}

func (m *MockWizardService) Submit(ctx context.Context, sessionID string) (*workflows.SessionState, error) {
	return m.state(m.Called(ctx, sessionID))
}

func (m *MockWizardService) Summary(ctx context.Context, sessionID string) (*wizard.Summary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wizard.Summary), args.Error(1)
}

func (m *MockWizardService) SeatMap(ctx context.Context, sessionID string) (*seatmap.Map, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.Map), args.Error(1)
}

func (m *MockWizardService) BoardingPass(ctx context.Context, sessionID, format string, download bool) (*boardingpass.Artifact, error) {
	args := m.Called(ctx, sessionID, format, download)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*boardingpass.Artifact), args.Error(1)
}

func (m *MockWizardService) state(args mock.Arguments) (*workflows.SessionState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflows.SessionState), args.Error(1)
}
