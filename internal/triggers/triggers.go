// Package triggers loads the ordered, per-locale trigger lists that drive
// intent dispatch. Each locale contributes a <locale>-triggers.json file
// mapping /body/flags pattern strings to intent references.
package triggers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Payload is the normalized static configuration attached to a trigger entry.
// Which fields matter depends on the intent: respond uses Text/File/Chance,
// mosh uses Level.
type Payload struct {
	Text   string   `json:"text,omitempty"`
	File   string   `json:"file,omitempty"`
	Chance *float64 `json:"chance,omitempty"`
	Level  int      `json:"level,omitempty"`
}

// Entry is one immutable (locale, pattern, intent) trigger. Entries are
// evaluated in load order; a more specific pattern must be authored before a
// general catch-all to win precedence.
type Entry struct {
	Locale  string
	Source  string
	Pattern *regexp.Regexp
	Intent  string
	Data    Payload
}

// Load reads <locale>-triggers.json from dir for each locale, in the given
// order. Entries keep their source file order; files are concatenated in
// locale order. A missing trigger file for a locale is skipped with a warning.
func Load(dir string, locales []string, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "triggers")

	var entries []Entry
	for _, locale := range locales {
		path := filepath.Join(dir, locale+"-triggers.json")

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn("No trigger file for locale", "locale", locale, "path", path)
				continue
			}
			return nil, fmt.Errorf("failed to read trigger file %q: %w", path, err)
		}

		localeEntries, err := parseFile(locale, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trigger file %q: %w", path, err)
		}

		log.Info("Loaded triggers", "locale", locale, "count", len(localeEntries))
		entries = append(entries, localeEntries...)
	}

	return entries, nil
}

// parseFile decodes one trigger file. The top-level JSON object is read
// token by token so that entry order matches source order; encoding/json maps
// would lose it, and order is load-bearing for dispatch precedence.
func parseFile(locale string, data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("trigger file must be a JSON object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		patternStr, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("bad value for pattern %q: %w", patternStr, err)
		}

		pattern, err := compilePattern(patternStr)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", patternStr, err)
		}

		intent, payload, err := normalizeRef(raw)
		if err != nil {
			return nil, fmt.Errorf("bad intent reference for pattern %q: %w", patternStr, err)
		}

		entries = append(entries, Entry{
			Locale:  locale,
			Source:  patternStr,
			Pattern: pattern,
			Intent:  intent,
			Data:    payload,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return entries, nil
}

// compilePattern translates a /body/flags pattern string into a compiled Go
// regexp. Flags i, m, and s become inline flags; (?<name> capture syntax is
// rewritten to Go's (?P<name>.
func compilePattern(s string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("pattern must be in /body/flags form")
	}
	end := strings.LastIndex(s, "/")
	if end == 0 {
		return nil, fmt.Errorf("pattern is missing its closing slash")
	}

	body := s[1:end]
	flags := s[end+1:]

	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g':
			// Go matching is not anchored to a cursor; the global flag is a no-op.
		default:
			return nil, fmt.Errorf("unsupported pattern flag %q", f)
		}
	}

	body = strings.ReplaceAll(body, "(?<", "(?P<")
	if inline.Len() > 0 {
		body = "(?" + inline.String() + ")" + body
	}

	return regexp.Compile(body)
}

// normalizeRef collapses the three accepted intent-reference shapes into one
// (name, payload) pair: a bare name string, a [name] / [name, data] pair, or
// an {intent, data} object.
func normalizeRef(raw json.RawMessage) (string, Payload, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, Payload{}, nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) == 0 || len(pair) > 2 {
			return "", Payload{}, fmt.Errorf("intent pair must have one or two elements")
		}
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return "", Payload{}, fmt.Errorf("intent pair must start with a name: %w", err)
		}
		if len(pair) == 1 {
			return name, Payload{}, nil
		}
		payload, err := normalizeData(pair[1])
		return name, payload, err
	}

	var obj struct {
		Intent string          `json:"intent"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", Payload{}, err
	}
	if obj.Intent == "" {
		return "", Payload{}, fmt.Errorf("intent object is missing its name")
	}
	if len(obj.Data) == 0 {
		return obj.Intent, Payload{}, nil
	}
	payload, err := normalizeData(obj.Data)
	return obj.Intent, payload, err
}

// normalizeData accepts either a payload object or a bare number, which is
// shorthand for an intensity level.
func normalizeData(raw json.RawMessage) (Payload, error) {
	var level float64
	if err := json.Unmarshal(raw, &level); err == nil {
		return Payload{Level: int(level)}, nil
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Payload{}, err
	}
	return payload, nil
}
