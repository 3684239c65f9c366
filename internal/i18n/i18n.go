// Package i18n holds the user-facing message catalogs.
//
// Catalogs are embedded YAML files (one per locale) registered into an
// x/text message catalog. Every sentence shown to a user is looked up by key
// through a Localizer, so the CLI, the TUI and the generator client speak the
// same language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale; every key must exist there.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle is a set of locale catalogs registered into one x/text catalog.
type Bundle struct {
	builder *catalog.Builder
	locales map[string]map[string]string
	matcher language.Matcher
	tags    []language.Tag
}

var defaultBundle = mustLoadEmbedded()

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedLocales)
	if err != nil {
		panic(fmt.Sprintf("i18n: load embedded catalogs: %v", err))
	}
	return b
}

// Default returns the bundle built from the embedded catalogs.
func Default() *Bundle {
	return defaultBundle
}

// LoadFromFS loads locales/*.yaml from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		locales: map[string]map[string]string{},
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}

	base, ok := b.locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	for locale, messages := range b.locales {
		for key := range messages {
			if _, exists := base[key]; !exists {
				return nil, fmt.Errorf("catalog %s: key %q missing from base locale", locale, key)
			}
		}
	}

	// The base locale goes first so the matcher falls back to it.
	b.tags = []language.Tag{language.MustParse(BaseLocale)}
	for _, locale := range b.Locales() {
		if locale != BaseLocale {
			b.tags = append(b.tags, language.MustParse(locale))
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", p)
	}
	if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
		return fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, want)
	}
	if _, exists := b.locales[locale]; exists {
		return fmt.Errorf("catalog %s: locale %q already defined", p, locale)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale tag %q: %w", p, locale, err)
	}

	tags := []language.Tag{tag}
	if base, _ := tag.Base(); base.String() != "und" {
		if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
			tags = append(tags, baseTag)
		}
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		messages[key] = value
		for _, t := range tags {
			if err := b.builder.SetString(t, key, value); err != nil {
				return fmt.Errorf("catalog %s: register %q: %w", p, key, err)
			}
		}
	}
	b.locales[locale] = messages
	return nil
}

// Locales returns the available locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether locale is exactly one of the catalog locales.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Localizer returns a Localizer for the best match of locale, falling back to BaseLocale.
func (b *Bundle) Localizer(locale string) *Localizer {
	tag := language.Make(strings.TrimSpace(locale))
	_, idx, _ := b.matcher.Match(tag)
	matched := b.tags[idx]
	return &Localizer{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(b.builder)),
	}
}

// Localizer formats catalog messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer from the embedded catalogs.
func New(locale string) *Localizer {
	return defaultBundle.Localizer(locale)
}

// Locale returns the matched locale tag.
func (l *Localizer) Locale() string {
	return l.tag.String()
}

// T formats the message stored under key.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
