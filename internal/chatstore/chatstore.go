// Package chatstore maintains the durable per-chat records: metadata merged
// from the transport, the content-policy flag, and aggregate usage counters.
// Message content is never stored. The collection is persisted wholesale as a
// JSON snapshot and restored at startup.
package chatstore

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Kind classifies a conversation surface. Any non-private chat is a group.
type Kind string

const (
	KindPrivate Kind = "private"
	KindGroup   Kind = "group"
)

// Chat is the durable record for a single conversation surface.
type Chat struct {
	ID       int64  `json:"id"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`

	// Safe is the content-policy flag. False means unrestricted.
	Safe bool `json:"safe"`

	// Languages counts inbound messages per sender locale. Counters only
	// ever increase.
	Languages map[string]int64 `json:"languages,omitempty"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// IsGroup reports whether the chat is a group surface.
func (c *Chat) IsGroup() bool {
	return c.Kind != KindPrivate
}

// Meta is the transport-provided chat metadata used to create or refresh a record.
type Meta struct {
	ID        int64
	Private   bool
	Title     string
	FirstName string
	LastName  string
	Username  string
}

func (m Meta) displayName() string {
	if m.Title != "" {
		return m.Title
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m Meta) kind() Kind {
	if m.Private {
		return KindPrivate
	}
	return KindGroup
}

// Store is the process-wide keyed collection of chat records. All mutation
// goes through Store methods; the snapshot timer and transport handlers run
// on separate goroutines.
type Store struct {
	mu     sync.RWMutex
	chats  map[int64]*Chat
	logger *slog.Logger
	now    func() time.Time
}

// New creates an empty store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		chats:  make(map[int64]*Chat),
		logger: logger.With("component", "chatstore"),
		now:    time.Now,
	}
}

// Touch looks up the record for the given transport metadata, creating it on
// first contact. Mutable metadata fields are merged on every call; counters,
// timestamps, and the content-policy flag are never reset. It returns a copy
// of the record.
func (s *Store) Touch(meta Meta) Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[meta.ID]
	if !ok {
		now := s.now()
		c = &Chat{
			ID:        meta.ID,
			Languages: make(map[string]int64),
			FirstSeen: now,
			LastSeen:  now,
		}
		s.chats[meta.ID] = c
		s.logger.Debug("New chat recorded", "chat_id", meta.ID, "kind", meta.kind())
	}

	c.Kind = meta.kind()
	c.Name = meta.displayName()
	c.Username = meta.Username

	return snapshotChat(c)
}

// RecordInbound bumps the locale histogram and liveness timestamp for a chat.
// Called exactly once per inbound message, before dispatch.
func (s *Store) RecordInbound(id int64, locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[id]
	if !ok {
		return
	}
	if c.Languages == nil {
		c.Languages = make(map[string]int64)
	}
	c.Languages[locale]++
	c.LastSeen = s.now()
}

// TogglePolicy flips the content-policy flag for a chat and returns the new
// value. Unknown chats are left untouched.
func (s *Store) TogglePolicy(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[id]
	if !ok {
		return false
	}
	c.Safe = !c.Safe
	return c.Safe
}

// IsSafe reports the content-policy flag for a chat.
func (s *Store) IsSafe(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	return ok && c.Safe
}

// Get returns a copy of the record for a chat, if present.
func (s *Store) Get(id int64) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return Chat{}, false
	}
	return snapshotChat(c), true
}

// Len returns the number of known chats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

func snapshotChat(c *Chat) Chat {
	out := *c
	out.Languages = make(map[string]int64, len(c.Languages))
	for k, v := range c.Languages {
		out.Languages[k] = v
	}
	return out
}
