package game_session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/teachcreate/internal/repositories/game_session Repository

import (
	"context"

	"github.com/KirkDiggler/teachcreate/internal/models"
)

// Repository defines the interface for game session persistence
type Repository interface {
	// CreateSession inserts a new session and assigns its ID
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.GameSession, error)

	// GetSessionByJoinCode retrieves the session holding a join code
	GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*models.GameSession, error)

	// ListSessions retrieves the sessions a creator started for a product
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// UpdateSessionStatus moves a session to a new status and stamps the
	// matching timestamp
	UpdateSessionStatus(ctx context.Context, input *UpdateSessionStatusInput) (*models.GameSession, error)

	// Ping checks the backing store is reachable
	Ping(ctx context.Context) error
}
