package intents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/dispatch"
)

var (
	photoExts = []string{"jpg", "jpeg", "png"}
	videoExts = []string{"gif", "mp4"}
)

// respondHandler sends a configured templated reply, optionally with a media
// attachment picked from the assets directory.
type respondHandler struct {
	deps Deps
}

func (h respondHandler) Handle(ctx context.Context, dc *dispatch.Context) (bool, error) {
	// A failed chance draw declines with no side effects, so a later entry
	// can still claim the message.
	if dc.Data.Chance != nil && h.deps.Rand.Float64() > *dc.Data.Chance {
		return false, nil
	}

	if dc.Data.File == "" {
		return true, h.deps.reply(ctx, dc, h.deps.resolve(dc, dc.Data.Text, dc.Captures))
	}

	h.deps.chatAction(ctx, dc.Chat.ID, models.ChatActionUploadPhoto)

	path, err := h.pickFile(dc.Data.File)
	if err != nil {
		return false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	var caption string
	if dc.Data.Text != "" {
		caption = h.deps.resolve(dc, dc.Data.Text, dc.Captures)
	}

	upload := &models.InputFileUpload{Filename: filepath.Base(path), Data: f}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	switch {
	case slices.Contains(photoExts, ext):
		_, err = h.deps.Bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:          dc.Chat.ID,
			Photo:           upload,
			Caption:         caption,
			ReplyParameters: replyParams(dc),
		})
	case slices.Contains(videoExts, ext):
		_, err = h.deps.Bot.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:          dc.Chat.ID,
			Video:           upload,
			Caption:         caption,
			ReplyParameters: replyParams(dc),
		})
	default:
		_, err = h.deps.Bot.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID:          dc.Chat.ID,
			Document:        upload,
			Caption:         caption,
			ReplyParameters: replyParams(dc),
		})
	}
	if err != nil {
		return false, fmt.Errorf("failed to send media reply: %w", err)
	}

	return true, nil
}

// pickFile resolves the payload's file reference under the assets directory.
// A directory reference picks one contained file at random.
func (h respondHandler) pickFile(ref string) (string, error) {
	path := filepath.Join(h.deps.AssetsDir, ref)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("media reference %q not found: %w", ref, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to read media directory %q: %w", ref, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("media directory %q is empty", ref)
	}

	return filepath.Join(path, files[h.deps.Rand.IntN(len(files))]), nil
}
