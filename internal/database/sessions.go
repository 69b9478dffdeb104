package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booking-wizard/internal/models"
)

// CreateSession registers a freshly started wizard workflow
func (db *DB) CreateSession(ctx context.Context, session *models.WizardSession) error {
	query := `
		INSERT INTO wizard_sessions (session_id, workflow_id, run_id, status, step, boarding_pass_style)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query, session.SessionID, session.WorkflowID, session.RunID,
		session.Status, session.Step, session.BoardingPassStyle)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	query := `
		SELECT session_id, workflow_id, run_id, status, step, flight_number, booking_id,
		       boarding_pass_style, created_at, updated_at
		FROM wizard_sessions
		WHERE session_id = ?
	`

	var session models.WizardSession
	var flightNumber, bookingID sql.NullString
	err := db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.SessionID, &session.WorkflowID, &session.RunID, &session.Status, &session.Step,
		&flightNumber, &bookingID, &session.BoardingPassStyle, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if flightNumber.Valid {
		session.FlightNumber = &flightNumber.String
	}
	if bookingID.Valid {
		session.BookingID = &bookingID.String
	}

	return &session, nil
}

// RecordProgress stores the latest committed state of an active session.
// Sessions that already reached a final status are left untouched.
func (db *DB) RecordProgress(ctx context.Context, progress models.SessionProgress) error {
	query := `
		UPDATE wizard_sessions
		SET status = ?, step = ?, flight_number = ?, booking_id = ?, boarding_pass_style = ?, updated_at = NOW()
		WHERE session_id = ? AND status = ?
	`

	result, err := db.ExecContext(ctx, query, progress.Status, progress.Step,
		nullString(progress.FlightNumber), nullString(progress.BookingID), progress.BoardingPassStyle,
		progress.SessionID, models.SessionActive)
	if err != nil {
		return fmt.Errorf("failed to record session progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// MySQL reports zero affected rows for an unchanged row as well
	session, err := db.GetSession(ctx, progress.SessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionActive && session.Status != progress.Status {
		return fmt.Errorf("session %s is %s: %w", progress.SessionID, session.Status, ErrSessionClosed)
	}
	return nil
}

// DeleteSession removes a registry row (for testing/admin)
func (db *DB) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM wizard_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
