package game_session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/common/clock"
	"github.com/KirkDiggler/teachcreate/internal/joincode"
	"github.com/KirkDiggler/teachcreate/internal/models"
	sessionRepo "github.com/KirkDiggler/teachcreate/internal/repositories/game_session"
	"github.com/KirkDiggler/teachcreate/internal/services/announcer"
	"github.com/KirkDiggler/teachcreate/internal/services/messaging"
	"github.com/sirupsen/logrus"
)

// announceTimeout bounds each announcement
const announceTimeout = 5 * time.Second

// service implements the Service interface
type service struct {
	sessionRepo      sessionRepo.Repository
	joinCodes        joincode.Generator
	clock            clock.Clock
	announcer        announcer.Announcer
	messagingService messaging.Service
	policy           TransitionPolicy
	joinCodeAttempts int
	logger           *logrus.Logger
}

// New creates a new game session service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.JoinCodeGenerator == nil {
		return nil, ErrNilJoinCodeGenerator
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	policy, err := ParseTransitionPolicy(string(cfg.TransitionPolicy))
	if err != nil {
		return nil, err
	}

	attempts := cfg.JoinCodeAttempts
	if attempts <= 0 {
		attempts = DefaultJoinCodeAttempts
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &service{
		sessionRepo:      cfg.SessionRepo,
		joinCodes:        cfg.JoinCodeGenerator,
		clock:            cfg.Clock,
		announcer:        cfg.Announcer,
		messagingService: cfg.MessagingService,
		policy:           policy,
		joinCodeAttempts: attempts,
		logger:           logger,
	}, nil
}

// CreateSession opens a new session in the waiting state with a fresh join code
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}

	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product ID cannot be empty", ErrInvalidInput)
	}

	if input.CreatorID == "" {
		return nil, fmt.Errorf("%w: creator ID cannot be empty", ErrInvalidInput)
	}

	if err := input.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	now := s.clock.Now()

	for attempt := 1; attempt <= s.joinCodeAttempts; attempt++ {
		code := s.joinCodes.Generate()

		output, err := s.sessionRepo.CreateSession(ctx, &sessionRepo.CreateSessionInput{
			ProductID: input.ProductID,
			CreatorID: input.CreatorID,
			JoinCode:  code,
			Status:    models.GameSessionStatusWaiting,
			Settings:  input.Settings,
			CreatedAt: now,
		})
		if errors.Is(err, sessionRepo.ErrJoinCodeConflict) {
			s.logger.WithFields(logrus.Fields{
				"product_id": input.ProductID,
				"join_code":  code,
				"attempt":    attempt,
			}).Warn("join code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create game session: %w", err)
		}

		session := output.Session
		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"product_id": session.ProductID,
			"creator_id": session.CreatorID,
			"join_code":  session.JoinCode,
		}).Info("game session created")

		s.announce(ctx, models.GameSessionEventCreated, session)

		return &CreateSessionOutput{
			Session: session,
		}, nil
	}

	return nil, ErrJoinCodeExhausted
}

// GetSession retrieves a session by ID
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}

	session, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, translateRepoError(err, "get game session")
	}

	return &GetSessionOutput{
		Session: session,
	}, nil
}

// GetSessionByJoinCode retrieves the session a join code belongs to
func (s *service) GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*GetSessionByJoinCodeOutput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}

	// A malformed code can never match a stored one
	code := joincode.Normalize(input.JoinCode)
	if !joincode.Valid(code) {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetSessionByJoinCode(ctx, &sessionRepo.GetSessionByJoinCodeInput{
		JoinCode: code,
	})
	if err != nil {
		return nil, translateRepoError(err, "get game session by join code")
	}

	return &GetSessionByJoinCodeOutput{
		Session: session,
	}, nil
}

// ListSessions lists a creator's sessions for a product, newest first
func (s *service) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil || input.ProductID == "" || input.CreatorID == "" {
		return nil, fmt.Errorf("%w: product ID and creator ID cannot be empty", ErrInvalidInput)
	}

	output, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{
		ProductID: input.ProductID,
		CreatorID: input.CreatorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}

	sessions := output.Sessions
	if sessions == nil {
		sessions = []*models.GameSession{}
	}

	return &ListSessionsOutput{
		Sessions: sessions,
	}, nil
}

// StartSession moves a session to active and stamps its start time
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}

	session, err := s.transition(ctx, input.SessionID, models.GameSessionStatusActive, models.GameSessionStatusWaiting)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.GameSessionEventStarted, session)

	return &StartSessionOutput{
		Session: session,
	}, nil
}

// EndSession moves a session to completed and stamps its end time
func (s *service) EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}

	session, err := s.transition(ctx, input.SessionID, models.GameSessionStatusCompleted, models.GameSessionStatusActive)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.GameSessionEventEnded, session)

	return &EndSessionOutput{
		Session: session,
	}, nil
}

// JoinSession checks a participant's join code against a session. Nothing is
// persisted; a successful join is only an acknowledgement.
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}

	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	code := joincode.Normalize(input.JoinCode)
	if code == "" {
		return nil, fmt.Errorf("%w: join code is required", ErrInvalidInput)
	}

	log := s.logger.WithFields(logrus.Fields{
		"session_id": input.SessionID,
		"user_id":    input.UserID,
	})

	if !joincode.Valid(code) {
		log.Debug("rejected malformed join code")
		return nil, ErrInvalidJoinCode
	}

	session, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: input.SessionID,
	})
	if errors.Is(err, sessionRepo.ErrSessionNotFound) {
		log.Debug("join attempted on unknown session")
		return nil, ErrInvalidJoinCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}

	if session.JoinCode != code {
		log.Debug("join code did not match")
		return nil, ErrInvalidJoinCode
	}

	log.WithField("status", session.Status).Info("participant joined game session")

	return &JoinSessionOutput{
		Joined:    true,
		SessionID: session.ID,
		JoinCode:  session.JoinCode,
		Status:    session.Status,
		Message:   s.joinMessage(ctx, session.Status),
	}, nil
}

// Ping checks the session store is reachable
func (s *service) Ping(ctx context.Context) error {
	return s.sessionRepo.Ping(ctx)
}

// transition writes the new status. Under the strict policy the write only
// succeeds if the session is currently in from.
func (s *service) transition(ctx context.Context, sessionID string, to, from models.GameSessionStatus) (*models.GameSession, error) {
	input := &sessionRepo.UpdateSessionStatusInput{
		SessionID: sessionID,
		Status:    to,
		Timestamp: s.clock.Now(),
	}
	if s.policy == TransitionPolicyStrict {
		input.ExpectedStatus = from
	}

	session, err := s.sessionRepo.UpdateSessionStatus(ctx, input)
	if errors.Is(err, sessionRepo.ErrStatusMismatch) {
		return nil, fmt.Errorf("%w: cannot move to %s: %v", ErrInvalidTransition, to, err)
	}
	if err != nil {
		return nil, translateRepoError(err, "update game session status")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"join_code":  session.JoinCode,
		"status":     session.Status,
		"policy":     s.policy,
	}).Info("game session status changed")

	return session, nil
}

// announce reports an event without ever failing the caller
func (s *service) announce(ctx context.Context, event models.GameSessionEvent, session *models.GameSession) {
	if s.announcer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	defer cancel()

	if err := s.announcer.Announce(ctx, event, session); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event":      event,
			"session_id": session.ID,
		}).WithError(err).Warn("failed to announce game session event")
	}
}

func (s *service) joinMessage(ctx context.Context, status models.GameSessionStatus) string {
	if s.messagingService == nil {
		return ""
	}

	output, err := s.messagingService.GetJoinResultMessage(ctx, &messaging.GetJoinResultMessageInput{
		Joined: true,
		Status: status,
	})
	if err != nil {
		s.logger.WithError(err).Debug("failed to build join message")
		return ""
	}

	return output.Message
}

func translateRepoError(err error, action string) error {
	if errors.Is(err, sessionRepo.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
