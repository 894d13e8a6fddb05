package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/teachcreate/internal/models"
	"github.com/KirkDiggler/teachcreate/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// webhookExecutor is the part of *discordgo.Session the announcer needs
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts game session lifecycle events to a Discord channel webhook
type Announcer struct {
	session          webhookExecutor
	messagingService messaging.Service
	config           *Config
	logger           *logrus.Logger
}

// Config holds the configuration for the announcer
type Config struct {
	// Webhook ID from the channel integration URL
	WebhookID string

	// Webhook token from the channel integration URL
	WebhookToken string

	// Username overrides the webhook's display name (optional)
	Username string

	// Tone is passed through to the messaging service (optional)
	Tone messaging.MessageTone

	// Messaging service used to word the announcements
	MessagingService messaging.Service

	// Logger (optional)
	Logger *logrus.Logger
}

// New creates a new Discord webhook announcer
func New(cfg *Config) (*Announcer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.WebhookID == "" || cfg.WebhookToken == "" {
		return nil, errors.New("webhook id and token cannot be empty")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	// Webhook execution needs no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newAnnouncer(cfg, session), nil
}

func newAnnouncer(cfg *Config, session webhookExecutor) *Announcer {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Announcer{
		session:          session,
		messagingService: cfg.MessagingService,
		config:           cfg,
		logger:           logger,
	}
}

// Announce posts a message describing event for the given session
func (a *Announcer) Announce(ctx context.Context, event models.GameSessionEvent, session *models.GameSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	msg, err := a.messagingService.GetSessionEventMessage(ctx, &messaging.GetSessionEventMessageInput{
		Event:         event,
		Session:       session,
		PreferredTone: a.config.Tone,
	})
	if err != nil {
		return fmt.Errorf("failed to build announcement: %w", err)
	}

	params := &discordgo.WebhookParams{
		Username: a.config.Username,
		Embeds:   []*discordgo.MessageEmbed{renderSessionEmbed(event, session, msg)},
	}

	if _, err := a.session.WebhookExecute(a.config.WebhookID, a.config.WebhookToken, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"event":      event,
		"session_id": session.ID,
		"join_code":  session.JoinCode,
	}).Debug("announced game session event")

	return nil
}
