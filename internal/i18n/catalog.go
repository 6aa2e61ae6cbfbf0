// Package i18n holds the localized message catalog. A Catalog is built once at
// startup and is read-only afterwards, so it is safe to share between requests.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Supported lists every language a client may select. Languages without their
// own messages are served the fallback language's text.
var Supported = []string{
	"zh", "en", "fr", "es", "de", "ja", "it", "pt", "ru", "ar",
	"ko", "hi", "id", "tr", "nl", "pl", "sv", "vi", "th", "uk",
}

type Catalog struct {
	fallback string
	messages map[string]map[string]string // lang -> "section.key" -> text
	codes    []string                     // matcher index -> language code
	matcher  language.Matcher
}

// Default loads the embedded catalog with the given fallback language.
func Default(fallback string) (*Catalog, error) {
	return Load(defaultMessages, fallback)
}

// Load parses a YAML document of the form lang -> section -> key -> text.
func Load(data []byte, fallback string) (*Catalog, error) {
	var raw map[string]map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}
	if fallback == "" {
		fallback = "en"
	}
	if _, ok := raw[fallback]; !ok {
		return nil, fmt.Errorf("message catalog has no %q section", fallback)
	}

	c := &Catalog{fallback: fallback, messages: make(map[string]map[string]string, len(raw))}
	for lang, sections := range raw {
		flat := make(map[string]string)
		for section, entries := range sections {
			for key, text := range entries {
				flat[section+"."+key] = text
			}
		}
		c.messages[lang] = flat
	}

	// The fallback goes first: the matcher returns index 0 when nothing matches.
	c.codes = append(c.codes, fallback)
	for _, code := range Supported {
		if code != fallback {
			c.codes = append(c.codes, code)
		}
	}
	tags := make([]language.Tag, 0, len(c.codes))
	for _, code := range c.codes {
		tags = append(tags, language.Make(code))
	}
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

// Fallback is the language used when a request names none we support.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Message looks key up in lang, then in the fallback language, and finally
// returns the key itself.
func (c *Catalog) Message(lang, key string) string {
	if text, ok := c.messages[lang][key]; ok {
		return text
	}
	if text, ok := c.messages[c.fallback][key]; ok {
		return text
	}
	return key
}

// Messages localizes each key and joins them with "; ".
func (c *Catalog) Messages(lang string, keys []string) string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Message(lang, k))
	}
	return strings.Join(out, "; ")
}

// Negotiate picks the response language. An explicit choice (query parameter
// or body field) wins over the Accept-Language header; regional variants such
// as zh-CN resolve to their base language.
func (c *Catalog) Negotiate(explicit, acceptLanguage string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			if code, ok := c.match(tag); ok {
				return code
			}
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if code, ok := c.match(tags...); ok {
				return code
			}
		}
	}
	return c.fallback
}

func (c *Catalog) match(tags ...language.Tag) (string, bool) {
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return c.codes[index], true
}

// Languages returns the supported language codes, sorted.
func (c *Catalog) Languages() []string {
	out := append([]string(nil), c.codes...)
	sort.Strings(out)
	return out
}
