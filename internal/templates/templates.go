// Package templates resolves symbolic message keys into user-facing text.
// Templates live in per-locale YAML bundles; a key may carry .safe/.unsafe
// variants gated by the chat's content-policy flag, and a template value may
// be a list of variants chosen from at random.
package templates

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var fieldPattern = regexp.MustCompile(`\{(\w+)\}`)

// Resolver holds the loaded locale bundles.
type Resolver struct {
	bundles       map[string]map[string]any // locale -> dotted key -> string | []string
	defaultLocale string
	logger        *slog.Logger
}

// Load reads every <locale>.yml bundle under dir. Nested mappings are
// flattened to dotted keys, so "snowflake: {enabled: ...}" is addressed as
// "snowflake.enabled".
func Load(dir, defaultLocale string, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "templates")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale directory: %w", err)
	}

	bundles := make(map[string]map[string]any)
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		locale := strings.TrimSuffix(name, ext)

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale bundle %q: %w", name, err)
		}

		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse locale bundle %q: %w", name, err)
		}

		bundle := make(map[string]any)
		flatten("", raw, bundle, log)
		bundles[locale] = bundle

		log.Debug("Loaded locale bundle", "locale", locale, "keys", len(bundle))
	}

	if len(bundles) == 0 {
		log.Warn("No locale bundles found", "dir", dir)
	}

	return &Resolver{
		bundles:       bundles,
		defaultLocale: defaultLocale,
		logger:        log,
	}, nil
}

// Candidates builds the locale priority chain for a requested locale:
// the locale itself, its base form ("pt-BR" -> "pt"), then the configured
// default.
func (r *Resolver) Candidates(requested string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(loc string) {
		if loc != "" && !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}

	add(requested)
	if i := strings.IndexAny(requested, "-_"); i > 0 {
		add(requested[:i])
	}
	add(r.defaultLocale)
	return out
}

// Resolve looks up key across the candidate locales in priority order. Each
// locale is first tried with the policy suffix chosen by safe; on a miss the
// policy-agnostic key is tried under the first candidate locale. The first
// hit wins. List-valued templates pick one variant uniformly at random, once
// per call. If nothing matches, the key itself is returned.
func (r *Resolver) Resolve(candidates []string, key string, safe bool, subs map[string]string) string {
	suffix := ".unsafe"
	if safe {
		suffix = ".safe"
	}

	for _, locale := range candidates {
		tpl, ok := r.lookup(locale, key+suffix)
		if !ok && len(candidates) > 0 {
			tpl, ok = r.lookup(candidates[0], key)
		}
		if ok {
			return interpolate(pick(tpl), subs)
		}
	}

	return key
}

func (r *Resolver) lookup(locale, key string) (any, bool) {
	bundle, ok := r.bundles[locale]
	if !ok {
		return nil, false
	}
	tpl, ok := bundle[key]
	return tpl, ok
}

// pick collapses a template value to a single string, drawing one variant
// uniformly when the value is a list.
func pick(tpl any) string {
	switch v := tpl.(type) {
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[rand.IntN(len(v))]
	default:
		return fmt.Sprint(v)
	}
}

// interpolate applies {field}-style substitutions. Fields without a supplied
// value are left untouched; validating substitutions is the caller's contract.
func interpolate(tpl string, subs map[string]string) string {
	if len(subs) == 0 {
		return tpl
	}
	return fieldPattern.ReplaceAllStringFunc(tpl, func(m string) string {
		field := m[1 : len(m)-1]
		if val, ok := subs[field]; ok {
			return val
		}
		return m
	})
}

func flatten(prefix string, node map[string]any, out map[string]any, log *slog.Logger) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out, log)
		case []any:
			variants := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					log.Warn("Skipping non-string template variant", "key", key)
					continue
				}
				variants = append(variants, s)
			}
			out[key] = variants
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
