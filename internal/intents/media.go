package intents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
)

// cacheFile downloads a transport file into the temp cache, keyed by file ID.
// An already-cached file is reused without touching the network.
func (d Deps) cacheFile(ctx context.Context, fileID, ext string) (string, error) {
	if err := os.MkdirAll(d.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := filepath.Join(d.TempDir, fileID+"."+ext)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	fileObj, err := d.Bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to resolve file link: %w", err)
	}
	if fileObj.FilePath == "" {
		return "", fmt.Errorf("empty file path returned from Telegram")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", d.Token, fileObj.FilePath)
	if err := download(ctx, url, path); err != nil {
		return "", err
	}

	return path, nil
}

// download fetches url into dest through a temp file so a failed transfer
// never leaves a partial file the cache would mistake for a hit.
func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected download status %d", resp.StatusCode)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write download file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close download file: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to finalize download file: %w", err)
	}

	return nil
}
