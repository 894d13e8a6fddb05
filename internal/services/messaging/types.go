package messaging

import (
	"github.com/KirkDiggler/teachcreate/internal/models"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a plain, informative tone
	ToneNeutral MessageTone = "neutral"

	// ToneEncouraging is an upbeat tone suited to classrooms
	ToneEncouraging MessageTone = "encouraging"

	// ToneCelebration is a celebratory tone
	ToneCelebration MessageTone = "celebration"
)

// Valid reports whether t is a known tone
func (t MessageTone) Valid() bool {
	switch t {
	case ToneNeutral, ToneEncouraging, ToneCelebration:
		return true
	}
	return false
}

// GetSessionEventMessageInput contains parameters for a lifecycle announcement
type GetSessionEventMessageInput struct {
	// Event is what happened to the session
	Event models.GameSessionEvent

	// Session is the session after the event
	Session *models.GameSession

	// PreferredTone overrides the service default (optional)
	PreferredTone MessageTone
}

// GetSessionEventMessageOutput contains the announcement
type GetSessionEventMessageOutput struct {
	// Title is a short headline
	Title string

	// Message is the announcement body
	Message string

	// Tone is the tone actually used
	Tone MessageTone
}

// GetJoinResultMessageInput contains parameters for a join result message
type GetJoinResultMessageInput struct {
	// Joined is true when the join code was accepted
	Joined bool

	// Status is the session status when known
	Status models.GameSessionStatus

	// PreferredTone overrides the service default (optional)
	PreferredTone MessageTone
}

// GetJoinResultMessageOutput contains the join result message
type GetJoinResultMessageOutput struct {
	Message string
	Tone    MessageTone
}

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
	// DefaultTone is used when a request names no tone
	DefaultTone MessageTone

	// Optional seed for testing
	Seed int64
}
