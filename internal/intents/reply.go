package intents

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/dispatch"
)

// resolve renders a template key under the matched entry's locale chain and
// the chat's content-policy flag.
func (d Deps) resolve(dc *dispatch.Context, key string, subs map[string]string) string {
	candidates := d.Resolver.Candidates(dc.Locale)
	return d.Resolver.Resolve(candidates, key, dc.Chat.Safe, subs)
}

// replyParams threads the reply onto the triggering message in groups.
// Private chat replies are sent bare.
func replyParams(dc *dispatch.Context) *models.ReplyParameters {
	if !dc.Chat.IsGroup() {
		return nil
	}
	return &models.ReplyParameters{MessageID: dc.Msg.ID}
}

// reply sends a markdown text reply for the dispatch context.
func (d Deps) reply(ctx context.Context, dc *dispatch.Context, text string) error {
	_, err := d.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          dc.Chat.ID,
		Text:            text,
		ParseMode:       models.ParseModeMarkdown,
		ReplyParameters: replyParams(dc),
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// chatAction best-effort signals activity; failures are ignored on purpose.
func (d Deps) chatAction(ctx context.Context, chatID int64, action models.ChatAction) {
	_, _ = d.Bot.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: action})
}
