package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DiscordSender posts notifications through a channel webhook.
type DiscordSender struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewDiscordSender parses a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}.
func NewDiscordSender(webhookURL string) (*DiscordSender, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordSender{session: session, id: id, token: token}, nil
}

// Send posts an embed with title and message.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	params := &discordgo.WebhookParams{
		Username: "betledger",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: message,
			Color:       0x2ecc71,
		}},
	}
	if _, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: execute webhook: %w", err)
	}
	return nil
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("discord: parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("discord: webhook url %q has no id/token", raw)
}
