package bot

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bunbot/internal/chatstore"
)

// SnapshotTask persists the chat store wholesale at every tick. State
// mutated while a write is in flight is simply caught by the next one.
func SnapshotTask(store *chatstore.Store, path string, interval time.Duration) Task {
	return Task{
		Name:     "state_snapshot",
		Interval: interval,
		Run: func(ctx context.Context) error {
			return store.Save(path)
		},
	}
}

// CacheCleanupTask prunes downloaded media files that have outlived maxAge.
// The cache is only an optimization; anything removed is re-downloaded on
// the next use.
func CacheCleanupTask(dir string, maxAge time.Duration, logger *slog.Logger) Task {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "cache_cleanup")

	return Task{
		Name:     "cache_cleanup",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}

			cutoff := time.Now().Add(-maxAge)
			removed := 0
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil || info.ModTime().After(cutoff) {
					continue
				}
				if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
					log.Warn("Failed to remove stale cache file", "file", entry.Name(), "error", err)
					continue
				}
				removed++
			}

			if removed > 0 {
				log.Info("Pruned media cache", "removed", removed)
			}
			return nil
		},
	}
}
