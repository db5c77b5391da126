// Package dispatch implements the trigger-scan state machine: inbound text is
// matched against the ordered trigger list, the first matching entry's intent
// runs under that entry's locale, and a declined match lets the scan continue.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"bunbot/internal/chatstore"
	"bunbot/internal/triggers"
)

// Context carries everything an intent handler needs for one inbound message.
// It is built fresh per match and never outlives the dispatch.
type Context struct {
	// Text is the raw inbound message text.
	Text string
	// Chat is the resolved chat record at dispatch time.
	Chat chatstore.Chat
	// Locale is the matched trigger entry's locale, threaded explicitly
	// instead of mutating ambient state.
	Locale string
	// Captures holds the named capture groups from the matched pattern.
	Captures map[string]string
	// Data is the entry's static intent configuration.
	Data triggers.Payload
	// Msg is the inbound transport message, used for replies and reply-to
	// inspection.
	Msg *models.Message
}

// Handler is a named intent behavior. Returning (false, nil) declines the
// match and lets the scan continue with later entries; (true, nil) ends the
// dispatch. An error always stops the scan and propagates to the top-level
// boundary.
type Handler func(ctx context.Context, dc *Context) (bool, error)

// Dispatcher owns the trigger list and the intent handler table.
type Dispatcher struct {
	entries  []triggers.Entry
	handlers map[string]Handler
	logger   *slog.Logger
}

// New builds a dispatcher, verifying up front that every trigger entry
// references a known intent. Unknown intents are a configuration error, not
// something to discover mid-dispatch.
func New(entries []triggers.Entry, handlers map[string]Handler, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, entry := range entries {
		if _, ok := handlers[entry.Intent]; !ok {
			return nil, fmt.Errorf("trigger %q references unknown intent %q", entry.Source, entry.Intent)
		}
	}

	return &Dispatcher{
		entries:  entries,
		handlers: handlers,
		logger:   logger.With("component", "dispatch"),
	}, nil
}

// Dispatch scans the trigger list in registry order against the message text.
// It reports whether any intent handled the message. A nil or text-less
// message is never dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *models.Message, chat chatstore.Chat) (bool, error) {
	if msg == nil || msg.Text == "" {
		return false, nil
	}

	for _, entry := range d.entries {
		match := entry.Pattern.FindStringSubmatch(msg.Text)
		if match == nil {
			continue
		}

		dc := &Context{
			Text:     msg.Text,
			Chat:     chat,
			Locale:   entry.Locale,
			Captures: captures(entry, match),
			Data:     entry.Data,
			Msg:      msg,
		}

		log := d.logger.With("intent", entry.Intent, "pattern", entry.Source, "chat_id", chat.ID)
		log.DebugContext(ctx, "Trigger matched")

		handled, err := d.handlers[entry.Intent](ctx, dc)
		if err != nil {
			return false, fmt.Errorf("intent %q failed: %w", entry.Intent, err)
		}
		if handled {
			log.DebugContext(ctx, "Intent handled message")
			return true, nil
		}

		// Declined: a later, more general entry may still claim the message.
		log.DebugContext(ctx, "Intent declined, continuing scan")
	}

	return false, nil
}

func captures(entry triggers.Entry, match []string) map[string]string {
	out := make(map[string]string)
	for i, name := range entry.Pattern.SubexpNames() {
		if name != "" && i < len(match) {
			out[name] = match[i]
		}
	}
	return out
}
