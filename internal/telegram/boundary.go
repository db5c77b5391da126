package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// errorFunc is a handler that surfaces failures instead of swallowing them.
type errorFunc func(ctx context.Context, b *bot.Bot, update *models.Update) error

// boundary adapts an errorFunc into a transport handler, routing any failure
// through the single top-level error boundary.
func (h *Handlers) boundary(fn errorFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if err := fn(ctx, b, update); err != nil {
			h.reportError(ctx, b, update, err)
		}
	}
}

// reportError is the top-level error boundary: the user gets a localized
// generic error message, the error is logged, and the triggering payload is
// forwarded to the operator for diagnosis. No error is fatal to the process.
func (h *Handlers) reportError(ctx context.Context, b *bot.Bot, update *models.Update, err error) {
	h.logger.ErrorContext(ctx, "Handler failed", "update_id", update.ID, "error", err)

	if msg := update.Message; msg != nil {
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   h.resolveFor(msg, "error", nil),
		})
		if sendErr != nil {
			h.logger.ErrorContext(ctx, "Failed to send error reply", "error", sendErr, "chat_id", msg.Chat.ID)
		}
	}

	if h.adminUID == 0 {
		return
	}

	report := err.Error() + "\n\nDid not occur due to a message."
	if update.Message != nil {
		payload, marshalErr := json.Marshal(update.Message)
		if marshalErr != nil {
			payload = []byte(fmt.Sprintf("<unserializable: %v>", marshalErr))
		}
		report = err.Error() + "\n\n```\n" + string(payload) + "\n```"
	}

	_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    h.adminUID,
		Text:      report,
		ParseMode: models.ParseModeMarkdown,
	})
	if sendErr != nil {
		h.logger.ErrorContext(ctx, "Failed to forward error to operator", "error", sendErr)
	}
}
