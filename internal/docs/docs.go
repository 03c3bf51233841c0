// Package docs serves the prebuilt documentation fragments.
//
// Fragments are HTML files produced by the documentation build. When only a
// markdown source exists next to where the fragment would be, it is
// converted with goldmark and sanitized with bluemonday instead.
package docs

import (
	"bytes"
	"context"
	"errors"
	"io/fs"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	apperrors "github.com/conneroisu/demoapp/internal/errors"
	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/pathutil"
)

// MissingMessage is reported when a fragment cannot be read.
const MissingMessage = "Could not read from the specified generated documentation file."

// Source is the part of the content repository fragments are read from.
type Source interface {
	ReadFile(ctx context.Context, p string) ([]byte, error)
}

// Pages reads documentation fragments.
type Pages struct {
	source   Source
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	logger   logging.Logger
}

// New returns the doc pages served from source.
func New(source Source, logger logging.Logger) *Pages {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pages{
		source: source,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: newDocPolicy(),
		logger: logger.WithComponent("docs"),
	}
}

func newDocPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").OnElements("code", "pre", "span", "div", "table")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Fragment returns the fragment stored at name, e.g. "components/button.html".
// A missing or empty fragment is a doc-missing error; nothing partial is
// ever returned alongside it.
func (p *Pages) Fragment(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, apperrors.NewDocMissingError("No generated documentation page path was provided.", nil).
			WithContext("code", apperrors.ErrCodeDocPathMissing)
	}

	out, err := p.source.ReadFile(ctx, name)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		out, err = p.fromMarkdown(ctx, name)
	}
	if err != nil {
		p.logger.Warn(ctx, err, "documentation fragment unavailable", "path", name)
		return nil, apperrors.NewDocMissingError(MissingMessage, err).WithPath(name)
	}
	if len(out) == 0 {
		return nil, apperrors.NewDocMissingError(MissingMessage, nil).WithPath(name)
	}

	return out, nil
}

func (p *Pages) fromMarkdown(ctx context.Context, name string) ([]byte, error) {
	mdName := pathutil.StripExtension(name) + ".md"

	src, err := p.source.ReadFile(ctx, mdName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert(src, &buf); err != nil {
		return nil, err
	}

	p.logger.Debug(ctx, "rendered documentation from markdown", "path", mdName)

	return p.policy.SanitizeBytes(buf.Bytes()), nil
}
