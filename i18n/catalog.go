/*
Package i18n provides translated UI strings, locale negotiation and
locale-aware currency formatting.

PURPOSE:
  The client renders every label from a message catalog fetched from the
  server, and server-side errors (zero billable hours, validation failures)
  are returned already translated.

CATALOG FORMAT:
  One JSON document per locale under locales/, nested by section:

    { "errors": { "zero_billable_hours": "..." } }

  Keys are dotted paths into that tree ("errors.zero_billable_hours").

LOOKUP ORDER:
  1. The requested locale
  2. The default locale
  3. The caller's fallback string
  4. The key itself

SEE ALSO:
  - currency.go: Money formatting
  - validate.go: Translated validation errors
*/
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localesFS embed.FS

// Catalog holds every locale's messages. It is read-only after Load.
type Catalog struct {
	messages      map[string]map[string]any
	defaultLocale string
	tags          []language.Tag
	names         []string
	matcher       language.Matcher
}

// Load reads the embedded catalogs. defaultLocale must be one of them.
func Load(defaultLocale string) (*Catalog, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{messages: make(map[string]map[string]any)}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		data, err := localesFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("decode locale %s: %w", name, err)
		}
		c.messages[name] = tree
	}

	if _, ok := c.messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}
	c.defaultLocale = defaultLocale

	// The default locale goes first so the matcher falls back to it.
	c.names = append(c.names, defaultLocale)
	for name := range c.messages {
		if name != defaultLocale {
			c.names = append(c.names, name)
		}
	}
	sort.Strings(c.names[1:])
	for _, name := range c.names {
		c.tags = append(c.tags, language.Make(name))
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Default returns the default locale.
func (c *Catalog) Default() string { return c.defaultLocale }

// Locales returns the supported locales, default first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.names...)
}

// Supports reports whether locale has a catalog.
func (c *Catalog) Supports(locale string) bool {
	_, ok := c.messages[locale]
	return ok
}

// Messages returns the whole message tree of a locale.
func (c *Catalog) Messages(locale string) (map[string]any, bool) {
	m, ok := c.messages[locale]
	return m, ok
}

// Lookup resolves a dotted key.
func (c *Catalog) Lookup(locale, key string, fallback ...string) string {
	if s, ok := resolve(c.messages[locale], key); ok {
		return s
	}
	if s, ok := resolve(c.messages[c.defaultLocale], key); ok {
		return s
	}
	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return key
}

func resolve(tree map[string]any, key string) (string, bool) {
	if tree == nil || key == "" {
		return "", false
	}
	var node any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

// Match picks the best supported locale. Each candidate may be a bare tag
// ("fr", "fr-CA") or an Accept-Language header; earlier candidates win.
func (c *Catalog) Match(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(candidate)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := c.matcher.Match(tags...)
		if conf != language.No {
			return c.names[idx]
		}
	}
	return c.defaultLocale
}
