package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetSessionEventMessage returns an announcement for a game session
	// lifecycle event
	GetSessionEventMessage(ctx context.Context, input *GetSessionEventMessageInput) (*GetSessionEventMessageOutput, error)

	// GetJoinResultMessage returns the text shown to a participant after a
	// join attempt
	GetJoinResultMessage(ctx context.Context, input *GetJoinResultMessageInput) (*GetJoinResultMessageOutput, error)
}
