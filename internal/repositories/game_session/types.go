package game_session

import (
	"time"

	"github.com/KirkDiggler/teachcreate/internal/models"
)

type CreateSessionInput struct {
	ProductID string
	CreatorID string
	JoinCode  string
	Status    models.GameSessionStatus
	Settings  models.GameSettings
	CreatedAt time.Time
}

type CreateSessionOutput struct {
	Session *models.GameSession
}

type GetSessionInput struct {
	SessionID string
}

type GetSessionByJoinCodeInput struct {
	JoinCode string
}

type ListSessionsInput struct {
	ProductID string
	CreatorID string
}

type ListSessionsOutput struct {
	// Sessions are ordered newest first
	Sessions []*models.GameSession
}

type UpdateSessionStatusInput struct {
	SessionID string

	// Status must be active or completed
	Status models.GameSessionStatus

	// ExpectedStatus, when set, makes the update conditional on the
	// current status. ErrStatusMismatch is returned if it does not hold.
	ExpectedStatus models.GameSessionStatus

	// Timestamp is written to StartedAt or EndedAt depending on Status
	Timestamp time.Time
}
