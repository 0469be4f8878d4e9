package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DiscordSender delivers embeds via Discord webhooks. Each event type can
// route to its own webhook; the empty key is the default route.
type DiscordSender struct {
	webhooks map[string]string
	client   *http.Client
}

// NewDiscordSender creates a DiscordSender from an event-to-webhook map.
// Events without a route fall back to the default (empty key) webhook; when
// neither exists the event is silently skipped.
func NewDiscordSender(webhooks map[string]string) *DiscordSender {
	return &DiscordSender{
		webhooks: webhooks,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	URL         string              `json:"url,omitempty"`
	Description string              `json:"description,omitempty"`
	Image       *discordEmbedImage  `json:"image,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
}

type discordEmbedImage struct {
	URL string `json:"url"`
}

type discordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Send posts the embed to the webhook routed for the event.
func (d *DiscordSender) Send(ctx context.Context, event string, e Embed) error {
	webhookURL, ok := d.webhooks[event]
	if !ok {
		webhookURL, ok = d.webhooks[""]
	}
	if !ok || webhookURL == "" {
		return nil
	}

	de := discordEmbed{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
	}
	if e.ImageURL != "" {
		de.Image = &discordEmbedImage{URL: e.ImageURL}
	}
	for _, f := range e.Fields {
		de.Fields = append(de.Fields, discordEmbedField(f))
	}
	if e.Footer != "" {
		de.Footer = &discordEmbedFooter{Text: e.Footer}
	}

	body, err := json.Marshal(map[string]any{"embeds": []discordEmbed{de}})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send request: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 No Content on success.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}
