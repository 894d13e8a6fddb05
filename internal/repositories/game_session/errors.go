package game_session

import (
	"errors"
	"fmt"

	"github.com/KirkDiggler/teachcreate/internal/models"
)

var (
	// ErrSessionNotFound is returned when no session matches the lookup
	ErrSessionNotFound = errors.New("game session not found")

	// ErrJoinCodeConflict is returned when the join code is already held
	// by another session
	ErrJoinCodeConflict = errors.New("join code already in use")

	// ErrStatusMismatch is returned by a conditional status update when the
	// session is not in the expected status
	ErrStatusMismatch = errors.New("game session status does not match expected status")
)

func validateCreateInput(input *CreateSessionInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}
	if input.ProductID == "" {
		return errors.New("product ID cannot be empty")
	}
	if input.CreatorID == "" {
		return errors.New("creator ID cannot be empty")
	}
	if input.JoinCode == "" {
		return errors.New("join code cannot be empty")
	}
	if !input.Status.Valid() {
		return fmt.Errorf("invalid status %q", input.Status)
	}
	return nil
}

func validateUpdateInput(input *UpdateSessionStatusInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}
	if input.Status != models.GameSessionStatusActive && input.Status != models.GameSessionStatusCompleted {
		return fmt.Errorf("cannot update session to status %q", input.Status)
	}
	if input.Timestamp.IsZero() {
		return errors.New("timestamp cannot be zero")
	}
	return nil
}

// applyStatus mutates session the same way for every backend
func applyStatus(session *models.GameSession, input *UpdateSessionStatusInput) {
	ts := input.Timestamp.UTC()
	session.Status = input.Status
	switch input.Status {
	case models.GameSessionStatusActive:
		session.StartedAt = &ts
	case models.GameSessionStatusCompleted:
		session.EndedAt = &ts
	}
}
