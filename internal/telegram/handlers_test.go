package telegram

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"

	"bunbot/internal/chatstore"
)

func TestFormatBreakdown(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pcts     map[string]float64
		expected string
	}{
		{
			name:     "empty histogram",
			pcts:     nil,
			expected: "-",
		},
		{
			name:     "single locale",
			pcts:     map[string]float64{"en": 100},
			expected: "en: 100.0%",
		},
		{
			name:     "largest share first",
			pcts:     map[string]float64{"pt": 6.8, "en": 93.2},
			expected: "en: 93.2%, pt: 6.8%",
		},
		{
			name:     "ties break alphabetically",
			pcts:     map[string]float64{"de": 50, "en": 50},
			expected: "de: 50.0%, en: 50.0%",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := formatBreakdown(tc.pcts); got != tc.expected {
				t.Errorf("formatBreakdown(%v) = %q, want %q", tc.pcts, got, tc.expected)
			}
		})
	}
}

func TestMetaFromChat(t *testing.T) {
	t.Parallel()

	private := metaFromChat(&models.Chat{
		ID:        42,
		Type:      models.ChatTypePrivate,
		FirstName: "Avery",
		LastName:  "Quinn",
		Username:  "avery",
	})
	if !private.Private || private.ID != 42 || private.FirstName != "Avery" {
		t.Errorf("private chat metadata mishandled: %+v", private)
	}

	group := metaFromChat(&models.Chat{
		ID:    -100,
		Type:  models.ChatTypeSupergroup,
		Title: "The Warren",
	})
	if group.Private || group.Title != "The Warren" {
		t.Errorf("group chat metadata mishandled: %+v", group)
	}
}

func TestMessageLocale(t *testing.T) {
	t.Parallel()

	h := NewHandlers(nil, chatstore.New(nil), nil, 0, "en", 0)

	withCode := &models.Message{From: &models.User{LanguageCode: "pt-BR"}}
	if got := h.messageLocale(withCode); got != "pt-BR" {
		t.Errorf("expected the sender's language code, got %q", got)
	}

	noCode := &models.Message{From: &models.User{}}
	if got := h.messageLocale(noCode); got != "en" {
		t.Errorf("expected the default locale, got %q", got)
	}

	noSender := &models.Message{}
	if got := h.messageLocale(noSender); got != "en" {
		t.Errorf("expected the default locale for a senderless message, got %q", got)
	}
}

func TestTrashify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		in       string
		ending   int
		expected string
	}{
		{
			name:     "word substitutions",
			in:       "hello world",
			ending:   0,
			expected: "hewwo wowwd >w<;",
		},
		{
			name:     "lowercases input",
			in:       "OKAY",
			ending:   1,
			expected: "otay >w<",
		},
		{
			name:     "this and that",
			in:       "this is just lol",
			ending:   3,
			expected: "dis ish jus hehe owo",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := trashify(tc.in, tc.ending); got != tc.expected {
				t.Errorf("trashify(%q) = %q, want %q", tc.in, got, tc.expected)
			}
		})
	}
}

func TestTrashifyAlwaysAppendsEnding(t *testing.T) {
	t.Parallel()

	for i, ending := range trashEndings {
		if got := trashify("hm", i); !strings.HasSuffix(got, ending) {
			t.Errorf("ending %d missing: got %q, want suffix %q", i, got, ending)
		}
	}
}
