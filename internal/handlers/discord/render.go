package discord

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/models"
	"github.com/KirkDiggler/teachcreate/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
)

const (
	colorWaiting   = 0x3498db // Blue
	colorActive    = 0x00ff00 // Green
	colorCompleted = 0x95a5a6 // Grey
)

// renderSessionEmbed renders the embed for a session event
func renderSessionEmbed(event models.GameSessionEvent, session *models.GameSession, msg *messaging.GetSessionEventMessageOutput) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Join Code",
			Value:  fmt.Sprintf("`%s`", session.JoinCode),
			Inline: true,
		},
		{
			Name:   "Status",
			Value:  string(session.Status),
			Inline: true,
		},
	}

	if session.Settings.MaxPlayers != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Max Players",
			Value:  fmt.Sprintf("%d", *session.Settings.MaxPlayers),
			Inline: true,
		})
	}

	timestamp := session.CreatedAt
	switch event {
	case models.GameSessionEventStarted:
		if session.StartedAt != nil {
			timestamp = *session.StartedAt
		}
	case models.GameSessionEventEnded:
		if session.EndedAt != nil {
			timestamp = *session.EndedAt
		}
	}

	return &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Message,
		Color:       statusColor(session.Status),
		Fields:      fields,
		Timestamp:   timestamp.UTC().Format(time.RFC3339),
	}
}

func statusColor(status models.GameSessionStatus) int {
	switch status {
	case models.GameSessionStatusActive:
		return colorActive
	case models.GameSessionStatusCompleted:
		return colorCompleted
	default:
		return colorWaiting
	}
}
