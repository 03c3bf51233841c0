// Package listing builds the generated listing pages: it reads a directory
// of views, drops files that are not navigable pages and maps the rest to
// display records.
package listing

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"strings"

	"github.com/conneroisu/demoapp/internal/content"
	apperrors "github.com/conneroisu/demoapp/internal/errors"
	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/pathutil"
)

// Page types and the badge colours they get in listings.
const (
	TypeExample = "example"
	TypeTest    = "test"

	ColorExample = "ruby07"
	ColorTest    = "azure07"
	ColorDefault = "graphite07"

	FolderIcon = "#icon-folder"
)

// PathDef is one navigable entry before display mapping.
type PathDef struct {
	Link       string
	Text       string
	Type       string
	LabelColor string
}

// MappedPath is the display-ready form of a PathDef.
type MappedPath struct {
	Href       string `json:"href" yaml:"href"`
	Text       string `json:"text" yaml:"text"`
	Icon       string `json:"icon,omitempty" yaml:"icon,omitempty"`
	PageType   string `json:"pageType,omitempty" yaml:"pageType,omitempty"`
	LabelColor string `json:"labelColor,omitempty" yaml:"labelColor,omitempty"`
}

// Page is a complete listing ready for the listing template.
type Page struct {
	Subtitle string       `json:"subtitle" yaml:"subtitle"`
	Paths    []MappedPath `json:"paths" yaml:"paths"`
}

// Source is the part of the content repository listings need.
type Source interface {
	ListDirectory(ctx context.Context, dir string) ([]string, error)
	Is(ctx context.Context, kind content.Kind, p string) bool
}

// Filter collapses "//" in every link, drops entries matched by rules and
// prepends prefix to the survivors. Input order is preserved and defs is
// not modified.
func Filter(defs []PathDef, rules Rules, prefix string) []PathDef {
	out := make([]PathDef, 0, len(defs))
	for _, def := range defs {
		def.Link = pathutil.CollapseSlashes(def.Link)
		if rules.Match(def.Link) {
			continue
		}
		if prefix != "" {
			def.Link = prefix + def.Link
		}
		out = append(out, def)
	}
	return out
}

// Mapper turns PathDefs into MappedPaths.
type Mapper struct {
	BasePath string
	Source   Source
}

// Map builds the display record for def. Entries without a link report false.
func (m Mapper) Map(ctx context.Context, def PathDef) (MappedPath, bool) {
	if def.Link == "" {
		return MappedPath{}, false
	}

	href := pathutil.CollapseSlashes(strings.ReplaceAll(def.Link, `\`, "/"))
	if !strings.HasPrefix(href, m.BasePath) {
		href = pathutil.CollapseSlashes(m.BasePath + href)
	}

	var icon string
	if m.Source != nil && m.Source.Is(ctx, content.KindDirectory, strings.Replace(href, m.BasePath, "", 1)) {
		icon = FolderIcon
		if !pathutil.HasTrailingSlash(href) {
			href += "/"
		}
	}

	mp := MappedPath{
		Href: pathutil.StripExtension(href),
		Text: pathutil.Humanize(def.Link),
		Icon: icon,
	}
	if def.Text != "" {
		mp.Text = def.Text
	}
	if def.Type != "" {
		mp.PageType = def.Type
		mp.LabelColor = def.LabelColor
		if mp.LabelColor == "" {
			mp.LabelColor = ColorDefault
		}
	}

	return mp, true
}

// MapAll maps every def, skipping the ones Map rejects.
func (m Mapper) MapAll(ctx context.Context, defs []PathDef) []MappedPath {
	out := make([]MappedPath, 0, len(defs))
	for _, def := range defs {
		if mp, ok := m.Map(ctx, def); ok {
			out = append(out, mp)
		}
	}
	return out
}

// Builder assembles listing pages from a content source.
type Builder struct {
	source Source
	mapper Mapper
	logger logging.Logger
}

// NewBuilder creates a Builder whose links are rooted at basePath.
func NewBuilder(source Source, basePath string, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		source: source,
		mapper: Mapper{BasePath: basePath, Source: source},
		logger: logger.WithComponent("listing"),
	}
}

// Directory lists the views inside dir. A missing directory yields an empty
// listing; any other read failure is returned.
func (b *Builder) Directory(ctx context.Context, dir string, extra ...*regexp.Regexp) (Page, error) {
	names, err := b.readDir(ctx, dir)
	if err != nil {
		return Page{}, err
	}

	defs := make([]PathDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, PathDef{Text: name, Link: name})
	}

	prefix := "/" + pathutil.TrimTrailingSlash(dir) + "/"
	defs = Filter(defs, GeneralExcludes.With(extra...), prefix)

	b.logger.Debug(ctx, "directory listing built", "dir", dir, "entries", len(defs))

	return Page{
		Subtitle: "Listing for " + dir,
		Paths:    b.mapper.MapAll(ctx, defs),
	}, nil
}

// Component lists every example and test page of a component.
func (b *Builder) Component(ctx context.Context, kind string, extra ...*regexp.Regexp) (Page, error) {
	names, err := b.readDir(ctx, "components/"+kind+"/")
	if err != nil {
		return Page{}, err
	}

	defs := make([]PathDef, 0, len(names))
	for _, name := range names {
		isTest := strings.HasPrefix(name, "test-")

		def := PathDef{
			Text:       componentLabel(name),
			Link:       "components/" + kind + "/" + name,
			Type:       TypeExample,
			LabelColor: ColorExample,
		}
		if isTest {
			def.Type = TypeTest
			def.LabelColor = ColorTest
		}
		defs = append(defs, def)
	}

	rules := GeneralExcludes.With(extra...).With(ComponentExcludes(kind)...)
	defs = Filter(defs, rules, "")

	b.logger.Debug(ctx, "component listing built", "component", kind, "entries", len(defs))

	return Page{
		Subtitle: "All Examples & Tests for " + kind,
		Paths:    b.mapper.MapAll(ctx, defs),
	}, nil
}

func (b *Builder) readDir(ctx context.Context, dir string) ([]string, error) {
	names, err := b.source.ListDirectory(ctx, dir)
	if err == nil {
		return names, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		b.logger.Info(ctx, "listing directory does not exist", "dir", dir)
		return nil, nil
	}

	return nil, apperrors.NewIOError(apperrors.ErrCodeListingFailed, "could not read listing directory", err).
		WithPath(dir)
}

// componentLabel strips the first "test-" and "example-" markers from a file
// name and humanizes the rest.
func componentLabel(name string) string {
	name = strings.Replace(name, "test-", "", 1)
	name = strings.Replace(name, "example-", "", 1)
	return pathutil.Humanize(name)
}
