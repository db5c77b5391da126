package chatstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// document is the persisted snapshot shape: {"chats":[...]}.
type document struct {
	Chats []*Chat `json:"chats"`
}

// Load replaces the store contents with the snapshot at path. A missing or
// unreadable snapshot leaves the store empty and is not an error; the file
// will be recreated by the next save.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("State file doesn't exist, starting empty", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("State file is corrupt, starting empty", "path", path, "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats = make(map[int64]*Chat, len(doc.Chats))
	for _, c := range doc.Chats {
		if c == nil {
			continue
		}
		s.chats[c.ID] = c
	}

	s.logger.Info("Loaded chat state", "path", path, "chats", len(s.chats))
	return nil
}

// Save serializes the full collection to path, replacing the previous
// snapshot. The write goes through a temp file and rename so a crash never
// leaves a truncated snapshot behind.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	doc := document{Chats: make([]*Chat, 0, len(s.chats))}
	for _, c := range s.chats {
		copied := snapshotChat(c)
		doc.Chats = append(doc.Chats, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(doc.Chats, func(i, j int) bool { return doc.Chats[i].ID < doc.Chats[j].ID })

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat state: %w", err)
	}

	tmp := path + ".tmp"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
