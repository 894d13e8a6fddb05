package game_session

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/teachcreate/internal/services/game_session Service

// Service manages the lifecycle of live game sessions
type Service interface {
	// CreateSession opens a new session in the waiting state with a fresh join code
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// GetSessionByJoinCode retrieves the session a join code belongs to
	GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*GetSessionByJoinCodeOutput, error)

	// ListSessions lists a creator's sessions for a product, newest first
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// StartSession moves a session to active and stamps its start time
	StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error)

	// EndSession moves a session to completed and stamps its end time
	EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error)

	// JoinSession checks a participant's join code against a session
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// Ping checks the session store is reachable
	Ping(ctx context.Context) error
}
