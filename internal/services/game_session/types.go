package game_session

import (
	"fmt"

	"github.com/KirkDiggler/teachcreate/internal/common/clock"
	"github.com/KirkDiggler/teachcreate/internal/joincode"
	"github.com/KirkDiggler/teachcreate/internal/models"
	sessionRepo "github.com/KirkDiggler/teachcreate/internal/repositories/game_session"
	"github.com/KirkDiggler/teachcreate/internal/services/announcer"
	"github.com/KirkDiggler/teachcreate/internal/services/messaging"
	"github.com/sirupsen/logrus"
)

// TransitionPolicy controls how strictly status changes are checked
type TransitionPolicy string

const (
	// TransitionPolicyPermissive lets start and end overwrite any status
	TransitionPolicyPermissive TransitionPolicy = "permissive"

	// TransitionPolicyStrict only allows waiting->active and active->completed
	TransitionPolicyStrict TransitionPolicy = "strict"
)

// DefaultJoinCodeAttempts is how many codes CreateSession tries before giving up
const DefaultJoinCodeAttempts = 5

// ParseTransitionPolicy converts a config value into a TransitionPolicy
func ParseTransitionPolicy(value string) (TransitionPolicy, error) {
	switch TransitionPolicy(value) {
	case "", TransitionPolicyPermissive:
		return TransitionPolicyPermissive, nil
	case TransitionPolicyStrict:
		return TransitionPolicyStrict, nil
	}
	return "", fmt.Errorf("unknown transition policy %q", value)
}

// Config holds configuration for the game session service
type Config struct {
	// Repository dependencies
	SessionRepo sessionRepo.Repository

	// Service dependencies
	JoinCodeGenerator joincode.Generator
	Clock             clock.Clock

	// Announcer is notified after create, start and end (optional)
	Announcer announcer.Announcer

	// MessagingService words join results (optional)
	MessagingService messaging.Service

	// TransitionPolicy defaults to permissive
	TransitionPolicy TransitionPolicy

	// JoinCodeAttempts defaults to DefaultJoinCodeAttempts
	JoinCodeAttempts int

	// Logger (optional)
	Logger *logrus.Logger
}

// CreateSessionInput contains parameters for creating a session
type CreateSessionInput struct {
	ProductID string
	CreatorID string
	Settings  models.GameSettings
}

// CreateSessionOutput contains the result of creating a session
type CreateSessionOutput struct {
	Session *models.GameSession
}

// GetSessionInput contains parameters for retrieving a session
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput contains the retrieved session
type GetSessionOutput struct {
	Session *models.GameSession
}

// GetSessionByJoinCodeInput contains parameters for a join code lookup
type GetSessionByJoinCodeInput struct {
	// JoinCode is matched case-insensitively
	JoinCode string
}

// GetSessionByJoinCodeOutput contains the matching session
type GetSessionByJoinCodeOutput struct {
	Session *models.GameSession
}

// ListSessionsInput contains parameters for listing sessions
type ListSessionsInput struct {
	ProductID string
	CreatorID string
}

// ListSessionsOutput contains the creator's sessions for a product
type ListSessionsOutput struct {
	Sessions []*models.GameSession
}

// StartSessionInput contains parameters for starting a session
type StartSessionInput struct {
	SessionID string
}

// StartSessionOutput contains the started session
type StartSessionOutput struct {
	Session *models.GameSession
}

// EndSessionInput contains parameters for ending a session
type EndSessionInput struct {
	SessionID string
}

// EndSessionOutput contains the ended session
type EndSessionOutput struct {
	Session *models.GameSession
}

// JoinSessionInput contains parameters for joining a session
type JoinSessionInput struct {
	SessionID string
	UserID    string
	JoinCode  string
}

// JoinSessionOutput acknowledges a successful join
type JoinSessionOutput struct {
	Joined    bool                     `json:"joined"`
	SessionID string                   `json:"session_id"`
	JoinCode  string                   `json:"join_code"`
	Status    models.GameSessionStatus `json:"status"`
	Message   string                   `json:"message,omitempty"`
}
