package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"declscan/internal/shared/util"
)

// Language identifies the grammar used to parse a unit of source text.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

// DefaultLanguage is used for source text that arrives without a path.
const DefaultLanguage = LanguageJavaScript

type LanguageSpec struct {
	Name       Language
	Extensions []string
	Enabled    bool
}

type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

func DefaultLanguageRegistry() map[Language]LanguageSpec {
	return map[Language]LanguageSpec{
		LanguageJavaScript: {
			Name:       LanguageJavaScript,
			Extensions: []string{".cjs", ".js", ".jsx", ".mjs"},
			Enabled:    true,
		},
		LanguageTypeScript: {
			Name:       LanguageTypeScript,
			Extensions: []string{".cts", ".mts", ".ts"},
			Enabled:    true,
		},
		LanguageTSX: {
			Name:       LanguageTSX,
			Extensions: []string{".tsx"},
			Enabled:    true,
		},
	}
}

func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[Language]LanguageSpec, error) {
	registry := cloneLanguageRegistry(DefaultLanguageRegistry())
	for _, name := range util.SortedStringKeys(overrides) {
		override := overrides[name]
		lang := Language(strings.ToLower(strings.TrimSpace(name)))
		spec, ok := registry[lang]
		if !ok {
			return nil, fmt.Errorf("unknown language override %q", name)
		}
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = normalizeExtensions(override.Extensions)
		}
		registry[lang] = spec
	}

	if err := validateLanguageRegistry(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// ParseLanguage maps a user supplied name onto a known Language.
func ParseLanguage(name string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(name)))
	switch lang {
	case "":
		return DefaultLanguage, nil
	case "js":
		return LanguageJavaScript, nil
	case "ts":
		return LanguageTypeScript, nil
	case LanguageJavaScript, LanguageTypeScript, LanguageTSX:
		return lang, nil
	}
	return "", fmt.Errorf("unknown language %q", name)
}

// LanguageForPath returns the language owning path's extension, or "" when
// no enabled language claims it.
func LanguageForPath(registry map[Language]LanguageSpec, path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	for _, lang := range sortedLanguages(registry) {
		spec := registry[lang]
		if !spec.Enabled {
			continue
		}
		for _, candidate := range spec.Extensions {
			if candidate == ext {
				return lang
			}
		}
	}
	return ""
}

func cloneLanguageRegistry(in map[Language]LanguageSpec) map[Language]LanguageSpec {
	out := make(map[Language]LanguageSpec, len(in))
	for id, spec := range in {
		copySpec := spec
		copySpec.Extensions = append([]string(nil), spec.Extensions...)
		out[id] = copySpec
	}
	return out
}

func validateLanguageRegistry(registry map[Language]LanguageSpec) error {
	extOwner := make(map[string]Language)
	enabled := 0
	for _, id := range sortedLanguages(registry) {
		spec := registry[id]
		if !spec.Enabled {
			continue
		}
		enabled++
		for _, ext := range normalizeExtensions(spec.Extensions) {
			if existing, ok := extOwner[ext]; ok && existing != id {
				return fmt.Errorf("duplicate extension %q owned by %q and %q", ext, existing, id)
			}
			extOwner[ext] = id
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one language must be enabled")
	}
	return nil
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(strings.ToLower(value))
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, ".") {
			raw = "." + raw
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

func sortedLanguages(registry map[Language]LanguageSpec) []Language {
	ids := make([]Language, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
