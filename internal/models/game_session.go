package models

import (
	"time"
)

// GameSessionStatus represents the current state of a live game session
type GameSessionStatus string

const (
	// GameSessionStatusWaiting indicates a session is waiting for participants
	GameSessionStatusWaiting GameSessionStatus = "waiting"

	// GameSessionStatusActive indicates a session is in progress
	GameSessionStatusActive GameSessionStatus = "active"

	// GameSessionStatusCompleted indicates a session has ended
	GameSessionStatusCompleted GameSessionStatus = "completed"
)

// IsWaiting reports whether the session has not been started yet
func (s GameSessionStatus) IsWaiting() bool {
	return s == GameSessionStatusWaiting
}

// IsActive reports whether the session is in progress
func (s GameSessionStatus) IsActive() bool {
	return s == GameSessionStatusActive
}

// IsCompleted reports whether the session has ended
func (s GameSessionStatus) IsCompleted() bool {
	return s == GameSessionStatusCompleted
}

// Valid reports whether s is one of the known statuses
func (s GameSessionStatus) Valid() bool {
	switch s {
	case GameSessionStatusWaiting, GameSessionStatusActive, GameSessionStatusCompleted:
		return true
	}
	return false
}

// GameSession is one instance of a product launched in live game mode
type GameSession struct {
	// ID is the unique identifier assigned by the store at creation
	ID string `json:"id"`

	// ProductID is the educational tool this session instantiates
	ProductID string `json:"product_id"`

	// CreatorID is the user who created the session
	CreatorID string `json:"creator_id"`

	// JoinCode is the short code participants use to find the session
	JoinCode string `json:"join_code"`

	// Status is the current state of the session
	Status GameSessionStatus `json:"status"`

	// Settings is the configuration supplied at creation
	Settings GameSettings `json:"settings"`

	// CreatedAt is when the session was created
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the session was started, nil until then
	StartedAt *time.Time `json:"started_at,omitempty"`

	// EndedAt is when the session was ended, nil until then
	EndedAt *time.Time `json:"ended_at,omitempty"`
}
