// Package locale carries the few translated strings the server and widgets
// need and picks the culture a request should be rendered in.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when nothing better matches.
const DefaultLocale = "en-US"

//go:embed cultures/*.yaml
var culturesFS embed.FS

type Message struct {
	Value   string `yaml:"value"`
	Comment string `yaml:"comment"`
}

type Culture struct {
	Name        string             `yaml:"name"`
	Language    string             `yaml:"language"`
	EnglishName string             `yaml:"englishName"`
	NativeName  string             `yaml:"nativeName"`
	Direction   string             `yaml:"direction"`
	Messages    map[string]Message `yaml:"messages"`
}

// Catalog holds every known culture. It is read-only after Load.
type Catalog struct {
	cultures map[string]*Culture
	names    []string
	matcher  language.Matcher
	fallback string
}

// Load parses the embedded culture tables.
func Load() (*Catalog, error) {
	return LoadFS(culturesFS, "cultures")
}

// LoadFS parses every *.yaml file in dir of fsys.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	files, err := fs.Glob(fsys, dir+"/*.yaml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no culture tables found in %s", dir)
	}
	sort.Strings(files)

	c := &Catalog{cultures: make(map[string]*Culture, len(files))}
	tags := make([]language.Tag, 0, len(files))

	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, err
		}

		var culture Culture
		if err := yaml.Unmarshal(raw, &culture); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		if culture.Name == "" {
			return nil, fmt.Errorf("culture in %s has no name", f)
		}

		tag, err := language.Parse(culture.Name)
		if err != nil {
			return nil, fmt.Errorf("culture %q: %w", culture.Name, err)
		}

		c.cultures[culture.Name] = &culture
		c.names = append(c.names, culture.Name)
		tags = append(tags, tag)
	}

	c.fallback = DefaultLocale
	if _, ok := c.cultures[c.fallback]; !ok {
		c.fallback = c.names[0]
	}

	// The matcher treats its first tag as the default.
	for i, n := range c.names {
		if n == c.fallback {
			tags[0], tags[i] = tags[i], tags[0]
			c.names[0], c.names[i] = c.names[i], c.names[0]
			break
		}
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

// Names lists the known culture names, fallback first.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Culture returns the culture called name.
func (c *Catalog) Culture(name string) (*Culture, bool) {
	culture, ok := c.cultures[name]
	return culture, ok
}

// Negotiate picks the best known culture for the given preferences. Each
// preference may be a single tag ("ko-KR") or an Accept-Language header.
// Empty and unparsable preferences are skipped.
func (c *Catalog) Negotiate(prefs ...string) string {
	var wanted []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	if len(wanted) == 0 {
		return c.fallback
	}

	_, idx, conf := c.matcher.Match(wanted...)
	if conf == language.No {
		return c.fallback
	}
	return c.names[idx]
}

// Translate looks key up in locale, then in the fallback culture. Unknown
// keys come back unchanged.
func (c *Catalog) Translate(locale, key string) string {
	if culture, ok := c.cultures[locale]; ok {
		if m, ok := culture.Messages[key]; ok {
			return m.Value
		}
	}
	if culture, ok := c.cultures[c.fallback]; ok {
		if m, ok := culture.Messages[key]; ok {
			return m.Value
		}
	}
	return key
}

// Translator binds Translate to one locale.
func (c *Catalog) Translator(locale string) func(key string) string {
	return func(key string) string {
		return c.Translate(locale, key)
	}
}

// Messages returns every key known to locale or the fallback, translated
// into locale.
func (c *Catalog) Messages(locale string) map[string]string {
	out := make(map[string]string)
	for _, name := range []string{c.fallback, locale} {
		culture, ok := c.cultures[name]
		if !ok {
			continue
		}
		for key, m := range culture.Messages {
			out[key] = m.Value
		}
	}
	return out
}
