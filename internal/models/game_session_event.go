package models

// GameSessionEvent names a lifecycle change worth telling participants about
type GameSessionEvent string

const (
	// GameSessionEventCreated is emitted when a session is opened for joining
	GameSessionEventCreated GameSessionEvent = "created"

	// GameSessionEventStarted is emitted when a session becomes active
	GameSessionEventStarted GameSessionEvent = "started"

	// GameSessionEventEnded is emitted when a session is completed
	GameSessionEventEnded GameSessionEvent = "ended"
)
