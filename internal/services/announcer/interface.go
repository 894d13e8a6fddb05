// Package announcer defines how session lifecycle events leave the service.
package announcer

import (
	"context"

	"github.com/KirkDiggler/teachcreate/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_announcer.go github.com/KirkDiggler/teachcreate/internal/services/announcer Announcer

// Announcer tells the outside world about session lifecycle events
type Announcer interface {
	Announce(ctx context.Context, event models.GameSessionEvent, session *models.GameSession) error
}
