package intents

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/acapela"
	"bunbot/internal/dispatch"
)

// acapelaHandler synthesizes the captured utterance with the captured voice
// and replies with the audio.
type acapelaHandler struct {
	deps Deps
}

func (h acapelaHandler) Handle(ctx context.Context, dc *dispatch.Context) (bool, error) {
	voice := strings.ToLower(dc.Captures["voice"])

	voiceID, ok := acapela.Voices[voice]
	if !ok {
		// Not a voice we know; let a later trigger claim the message.
		return false, nil
	}

	// The vendor chokes on embedded newlines.
	text := strings.ReplaceAll(dc.Captures["text"], "\n", "..")

	h.deps.chatAction(ctx, dc.Chat.ID, models.ChatActionRecordVoice)

	soundURL, err := h.deps.Acapela.Synthesize(ctx, voiceID, text)
	if err != nil {
		return false, fmt.Errorf("voice synthesis failed: %w", err)
	}

	h.deps.chatAction(ctx, dc.Chat.ID, models.ChatActionUploadVoice)

	_, err = h.deps.Bot.SendVoice(ctx, &bot.SendVoiceParams{
		ChatID:          dc.Chat.ID,
		Voice:           &models.InputFileString{Data: soundURL},
		ReplyParameters: replyParams(dc),
	})
	if err != nil {
		return false, fmt.Errorf("failed to send voice reply: %w", err)
	}

	return true, nil
}
