package triggers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFilePreservesOrder(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"/^alpha$/i": "respond",
		"/^beta$/": ["mosh", 2],
		"/^gamma$/i": { "intent": "roll" },
		"/^alpha$/i": "respond"
	}`)

	entries, err := parseFile("en", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	wantSources := []string{"/^alpha$/i", "/^beta$/", "/^gamma$/i", "/^alpha$/i"}
	if len(entries) != len(wantSources) {
		t.Fatalf("expected %d entries, got %d", len(wantSources), len(entries))
	}
	for i, want := range wantSources {
		if entries[i].Source != want {
			t.Errorf("entry %d out of order: got %q, want %q", i, entries[i].Source, want)
		}
		if entries[i].Locale != "en" {
			t.Errorf("entry %d lost its locale: %q", i, entries[i].Locale)
		}
	}
}

func TestNormalizeRefShapes(t *testing.T) {
	t.Parallel()

	chance := 0.5

	testCases := []struct {
		name       string
		value      string
		wantIntent string
		wantData   Payload
	}{
		{
			name:       "bare name",
			value:      `"respond"`,
			wantIntent: "respond",
		},
		{
			name:       "single element pair",
			value:      `["roll"]`,
			wantIntent: "roll",
		},
		{
			name:       "pair with numeric level",
			value:      `["mosh", 4]`,
			wantIntent: "mosh",
			wantData:   Payload{Level: 4},
		},
		{
			name:       "pair with payload object",
			value:      `["respond", {"text": "hi", "chance": 0.5}]`,
			wantIntent: "respond",
			wantData:   Payload{Text: "hi", Chance: &chance},
		},
		{
			name:       "object form",
			value:      `{"intent": "respond", "data": {"file": "pics", "text": "cap"}}`,
			wantIntent: "respond",
			wantData:   Payload{File: "pics", Text: "cap"},
		},
		{
			name:       "object form without data",
			value:      `{"intent": "mosh"}`,
			wantIntent: "mosh",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			intent, data, err := normalizeRef([]byte(tc.value))
			if err != nil {
				t.Fatalf("normalizeRef(%s) failed: %v", tc.value, err)
			}
			if intent != tc.wantIntent {
				t.Errorf("intent = %q, want %q", intent, tc.wantIntent)
			}
			if data.Text != tc.wantData.Text || data.File != tc.wantData.File || data.Level != tc.wantData.Level {
				t.Errorf("payload = %+v, want %+v", data, tc.wantData)
			}
			if (data.Chance == nil) != (tc.wantData.Chance == nil) {
				t.Fatalf("chance presence mismatch: %+v vs %+v", data, tc.wantData)
			}
			if data.Chance != nil && *data.Chance != *tc.wantData.Chance {
				t.Errorf("chance = %v, want %v", *data.Chance, *tc.wantData.Chance)
			}
		})
	}
}

func TestNormalizeRefRejectsBadShapes(t *testing.T) {
	t.Parallel()

	for _, value := range []string{`[]`, `["a", 1, 2]`, `{"data": {}}`, `42`} {
		if _, _, err := normalizeRef([]byte(value)); err == nil {
			t.Errorf("normalizeRef(%s) should have failed", value)
		}
	}
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		pattern   string
		matches   []string
		rejects   []string
		expectErr bool
	}{
		{
			name:    "case insensitive flag",
			pattern: "/^hello$/i",
			matches: []string{"hello", "HELLO", "HeLLo"},
			rejects: []string{"hello there"},
		},
		{
			name:    "no flags is case sensitive",
			pattern: "/^hello$/",
			matches: []string{"hello"},
			rejects: []string{"HELLO"},
		},
		{
			name:    "named captures in reference syntax",
			pattern: "/^roll (?<amt>[0-9]+)d(?<die>[0-9]+)$/i",
			matches: []string{"roll 3d6", "ROLL 1d20"},
			rejects: []string{"roll d6"},
		},
		{
			name:    "global flag tolerated",
			pattern: "/bun/gi",
			matches: []string{"a bun!"},
		},
		{
			name:      "missing leading slash",
			pattern:   "^hello$",
			expectErr: true,
		},
		{
			name:      "unknown flag",
			pattern:   "/^x$/q",
			expectErr: true,
		},
		{
			name:      "invalid body",
			pattern:   "/([unclosed/i",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			re, err := compilePattern(tc.pattern)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("compilePattern(%q) should have failed", tc.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("compilePattern(%q) failed: %v", tc.pattern, err)
			}
			for _, s := range tc.matches {
				if !re.MatchString(s) {
					t.Errorf("pattern %q should match %q", tc.pattern, s)
				}
			}
			for _, s := range tc.rejects {
				if re.MatchString(s) {
					t.Errorf("pattern %q should not match %q", tc.pattern, s)
				}
			}
		})
	}
}

func TestLoadConcatenatesLocalesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("en-triggers.json", `{"/^one$/": "respond", "/^two$/": "respond"}`)
	write("pt-triggers.json", `{"/^um$/": "respond"}`)

	entries, err := Load(dir, []string{"en", "pt", "de"}, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	wantLocales := []string{"en", "en", "pt"}
	if len(entries) != len(wantLocales) {
		t.Fatalf("expected %d entries, got %d", len(wantLocales), len(entries))
	}
	for i, want := range wantLocales {
		if entries[i].Locale != want {
			t.Errorf("entry %d locale = %q, want %q", i, entries[i].Locale, want)
		}
	}
}
