package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// MinPlayersLimit is the smallest accepted maxPlayers setting
	MinPlayersLimit = 2

	// MaxPlayersLimit is the largest accepted maxPlayers setting
	MaxPlayersLimit = 50

	maxPlayersKey = "maxPlayers"
)

// ErrMaxPlayersOutOfRange is returned by Validate for a maxPlayers value
// outside [MinPlayersLimit, MaxPlayersLimit]
var ErrMaxPlayersOutOfRange = fmt.Errorf("maxPlayers must be between %d and %d", MinPlayersLimit, MaxPlayersLimit)

// GameSettings is the configuration of a game session. Known keys are typed;
// every other key is kept as raw JSON so the settings object round-trips
// exactly as the creator supplied it.
type GameSettings struct {
	// MaxPlayers caps the number of participants, nil when not set
	MaxPlayers *int

	// Extra holds the keys this service does not interpret
	Extra map[string]json.RawMessage
}

// Validate checks the typed fields
func (s GameSettings) Validate() error {
	if s.MaxPlayers != nil && (*s.MaxPlayers < MinPlayersLimit || *s.MaxPlayers > MaxPlayersLimit) {
		return ErrMaxPlayersOutOfRange
	}
	return nil
}

// MarshalJSON writes the settings as a single flat object
func (s GameSettings) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+1)
	for key, value := range s.Extra {
		out[key] = value
	}

	if s.MaxPlayers != nil {
		value, err := json.Marshal(*s.MaxPlayers)
		if err != nil {
			return nil, err
		}
		out[maxPlayersKey] = value
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads a flat settings object. A null or missing document
// yields empty settings.
func (s *GameSettings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("settings must be a JSON object: %w", err)
	}

	*s = GameSettings{}

	if value, ok := raw[maxPlayersKey]; ok {
		delete(raw, maxPlayersKey)
		if string(value) != "null" {
			var maxPlayers int
			if err := json.Unmarshal(value, &maxPlayers); err != nil {
				return errors.New("maxPlayers must be an integer")
			}
			s.MaxPlayers = &maxPlayers
		}
	}

	if len(raw) > 0 {
		s.Extra = raw
	}

	return nil
}

// IntPtr is a helper for building settings literals
func IntPtr(v int) *int {
	return &v
}
