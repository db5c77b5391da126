package intents

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/dispatch"
	"bunbot/internal/glitch"
)

// moshMultiplier scales a trigger's intensity level into corruption passes.
const moshMultiplier = 50

type mediaKind int

const (
	kindVideo mediaKind = iota
	kindPhoto
)

// moshHandler corrupts the media the triggering message replies to and sends
// it back in its original kind.
type moshHandler struct {
	deps Deps
}

func (h moshHandler) Handle(ctx context.Context, dc *dispatch.Context) (bool, error) {
	reply := dc.Msg.ReplyToMessage
	if reply == nil {
		return true, nil
	}

	fileID, kind, ok := moshTarget(reply)
	if !ok {
		return true, nil
	}

	log := h.deps.Logger.With("intent", "mosh", "chat_id", dc.Chat.ID, "file_id", fileID)

	level := dc.Data.Level
	if level < 1 {
		level = 1
	}

	workingAction := models.ChatActionRecordVideo
	if kind == kindPhoto {
		workingAction = models.ChatActionUploadPhoto
	}
	h.deps.chatAction(ctx, dc.Chat.ID, workingAction)

	// Failures past this point are answered with the generic error template
	// instead of crashing the dispatch.
	if err := h.mosh(ctx, dc, fileID, kind, level); err != nil {
		log.ErrorContext(ctx, "Mosh failed", "error", err)
		return true, h.deps.reply(ctx, dc, h.deps.resolve(dc, "error", nil))
	}

	return true, nil
}

func (h moshHandler) mosh(ctx context.Context, dc *dispatch.Context, fileID string, kind mediaKind, level int) error {
	ext := "mp4"
	if kind == kindPhoto {
		ext = "png"
	}

	path, err := h.deps.cacheFile(ctx, fileID, ext)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cached media: %w", err)
	}

	moshed := glitch.Destroy(data, level*moshMultiplier, nil)
	upload := &models.InputFileUpload{
		Filename: filepath.Base(path),
		Data:     bytes.NewReader(moshed),
	}

	if kind == kindVideo {
		h.deps.chatAction(ctx, dc.Chat.ID, models.ChatActionUploadVideo)
		_, err = h.deps.Bot.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:          dc.Chat.ID,
			Video:           upload,
			ReplyParameters: replyParams(dc),
		})
	} else {
		h.deps.chatAction(ctx, dc.Chat.ID, models.ChatActionUploadPhoto)
		_, err = h.deps.Bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:          dc.Chat.ID,
			Photo:           upload,
			ReplyParameters: replyParams(dc),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to upload moshed media: %w", err)
	}

	return nil
}

// moshTarget extracts the corruptible media from a replied-to message:
// a video, an mp4 document, or the largest photo size.
func moshTarget(msg *models.Message) (string, mediaKind, bool) {
	switch {
	case msg.Video != nil:
		return msg.Video.FileID, kindVideo, true
	case msg.Document != nil && msg.Document.MimeType == "video/mp4":
		return msg.Document.FileID, kindVideo, true
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID, kindPhoto, true
	default:
		return "", 0, false
	}
}
