// Package notify delivers detection signals to operators. Signals are
// rendered into a transport-neutral Embed and dispatched to all registered
// senders (Discord, Telegram), filtered by event type so each deployment
// receives only the alerts it cares about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event types dispatched by the pipeline.
const (
	EventArbitrage = "arb_detected"
	EventOffer     = "offer_detected"
	EventError     = "error"
)

// Embed is a transport-neutral notification: a titled card with an optional
// image, link, named fields, and a footer line. Senders map it onto their
// own wire format.
type Embed struct {
	Title       string
	URL         string
	Description string
	ImageURL    string
	Footer      string
	Fields      []EmbedField
}

// EmbedField is one name/value pair on an Embed.
type EmbedField struct {
	Name  string
	Value string
}

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers the embed for the given event type. Senders that are
	// not configured for the event return nil without delivering.
	Send(ctx context.Context, event string, e Embed) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches embeds to one or more Senders. It maintains a set of
// allowed event types; Notify only forwards embeds whose event type is in
// the allowed set. An empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that delivers to the given senders. Only
// events whose type appears in events are forwarded; if events is empty,
// all event types are allowed.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends an embed to all senders if the event type passes the filter.
// Errors from individual senders are collected; a single sender failure
// does not prevent delivery to the rest.
func (n *Notifier) Notify(ctx context.Context, event string, e Embed) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, event, e); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
