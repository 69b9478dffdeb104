package activities

import (
	"context"
	"errors"
	"fmt"

	"booking-wizard/internal/database"
	"booking-wizard/internal/models"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

type SessionActivities struct {
	DB *database.DB
}

func NewSessionActivities(db *database.DB) *SessionActivities {
	return &SessionActivities{DB: db}
}

// RecordProgress writes the session's latest committed state to the registry
func (a *SessionActivities) RecordProgress(ctx context.Context, progress models.SessionProgress) error {
	err := a.DB.RecordProgress(ctx, progress)
	if err != nil {
		// Missing or closed sessions are permanent errors - don't retry
		if errors.Is(err, database.ErrSessionNotFound) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "SessionNotFound", err)
		}
		if errors.Is(err, database.ErrSessionClosed) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "SessionClosed", err)
		}
		return fmt.Errorf("failed to record session progress: %w", err)
	}

	activity.GetLogger(ctx).Debug("Session progress recorded",
		"sessionID", progress.SessionID, "status", progress.Status, "step", progress.Step)
	return nil
}
