package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/models"
)

// service implements the Service interface
type service struct {
	defaultTone MessageTone

	// Random number generator for selecting random messages, guarded by mu
	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	tone := ToneNeutral
	seed := time.Now().UnixNano()

	if config != nil {
		if config.DefaultTone != "" {
			if !config.DefaultTone.Valid() {
				return nil, fmt.Errorf("unknown message tone %q", config.DefaultTone)
			}
			tone = config.DefaultTone
		}
		if config.Seed != 0 {
			seed = config.Seed
		}
	}

	return &service{
		defaultTone: tone,
		rand:        rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *service) tone(preferred MessageTone) MessageTone {
	if preferred.Valid() {
		return preferred
	}
	return s.defaultTone
}

func (s *service) pick(messages []string) string {
	s.mu.Lock()
	i := s.rand.Intn(len(messages))
	s.mu.Unlock()
	return messages[i]
}

// GetSessionEventMessage returns an announcement for a game session lifecycle event
func (s *service) GetSessionEventMessage(ctx context.Context, input *GetSessionEventMessageInput) (*GetSessionEventMessageOutput, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("input and session cannot be nil")
	}

	tone := s.tone(input.PreferredTone)
	code := input.Session.JoinCode

	var title string
	var messages []string

	switch input.Event {
	case models.GameSessionEventCreated:
		title = fmt.Sprintf("Live game open: join with %s", code)
		switch tone {
		case ToneEncouraging:
			messages = []string{
				fmt.Sprintf("A new live game is ready! Grab your device and enter code %s.", code),
				fmt.Sprintf("Warm up those brains! Join the live game with code %s.", code),
			}
		case ToneCelebration:
			messages = []string{
				fmt.Sprintf("🎉 Game time! Enter code %s to jump in.", code),
				fmt.Sprintf("🎉 The lobby is open! Code %s gets you in.", code),
			}
		default:
			messages = []string{
				fmt.Sprintf("A live game session is waiting for participants. Join code: %s.", code),
			}
		}
		if maxPlayers := input.Session.Settings.MaxPlayers; maxPlayers != nil {
			for i := range messages {
				messages[i] = fmt.Sprintf("%s Up to %d players.", messages[i], *maxPlayers)
			}
		}

	case models.GameSessionEventStarted:
		title = fmt.Sprintf("Live game %s has started", code)
		switch tone {
		case ToneEncouraging:
			messages = []string{
				"The game has started. Do your best and have fun!",
				"We're live! Read each question carefully and take your time.",
			}
		case ToneCelebration:
			messages = []string{
				"🚀 And we're off! Good luck everyone!",
				"🚀 The game is live. Let's go!",
			}
		default:
			messages = []string{
				"The live game session is now active.",
			}
		}

	case models.GameSessionEventEnded:
		title = fmt.Sprintf("Live game %s has ended", code)
		switch tone {
		case ToneEncouraging:
			messages = []string{
				"That's a wrap! Great effort from everyone.",
				"The game is over. Well done for taking part!",
			}
		case ToneCelebration:
			messages = []string{
				"🏆 Game over! Thanks for playing!",
				"🏆 That's the final whistle. What a game!",
			}
		default:
			messages = []string{
				"The live game session has been completed.",
			}
		}

	default:
		return nil, fmt.Errorf("unknown session event %q", input.Event)
	}

	return &GetSessionEventMessageOutput{
		Title:   title,
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

// GetJoinResultMessage returns the text shown to a participant after a join attempt
func (s *service) GetJoinResultMessage(ctx context.Context, input *GetJoinResultMessageInput) (*GetJoinResultMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := s.tone(input.PreferredTone)

	var messages []string
	switch {
	case !input.Joined:
		messages = []string{
			"That join code doesn't match this game. Check the code and try again.",
		}
	case input.Status.IsActive():
		messages = []string{
			"You're in! The game is already running, so jump straight in.",
		}
	case input.Status.IsCompleted():
		messages = []string{
			"This game has already finished. Ask your host for a new code.",
		}
	case tone == ToneNeutral:
		messages = []string{
			"Joined. Waiting for the host to start the game.",
		}
	default:
		messages = []string{
			"You're in! Hang tight while everyone else joins.",
			"Welcome aboard! The host will start the game soon.",
		}
	}

	return &GetJoinResultMessageOutput{
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}
