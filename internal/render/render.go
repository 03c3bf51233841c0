// Package render turns views from the content repository into HTML pages.
//
// A view is an html/template file under the views root. It is executed with
// the request's layout.Options and, unless the options name no layout, the
// result is handed to the layout template as {{.body}}. Finalize applies the
// response post-processing: the live-reload client and CSP nonces.
package render

import (
	"bytes"
	"context"
	"html/template"
	"path"
	"sync"

	apperrors "github.com/conneroisu/demoapp/internal/errors"
	"github.com/conneroisu/demoapp/internal/layout"
	"github.com/conneroisu/demoapp/internal/listing"
	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/pathutil"
	"github.com/conneroisu/demoapp/internal/validation"
)

// ListingView is the view name listings are rendered with when present.
const ListingView = "listing"

// ViewSource is the part of the content repository views are read from.
type ViewSource interface {
	FileExists(ctx context.Context, p string) bool
	ReadFile(ctx context.Context, p string) ([]byte, error)
}

// Config controls template caching and the live-reload client.
type Config struct {
	// Cache keeps parsed templates until Reset is called.
	Cache bool
	// LiveReloadPath is the websocket path injected into pages. Empty
	// disables injection.
	LiveReloadPath string
}

// Renderer executes views and layouts.
type Renderer struct {
	views  ViewSource
	config Config
	logger logging.Logger
	funcs  template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// New returns a Renderer over views. A nil logger discards output.
func New(views ViewSource, config Config, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		views:  views,
		config: config,
		logger: logger.WithComponent("render"),
		funcs: template.FuncMap{
			"titleCase": pathutil.TitleCase,
			"stripExt":  pathutil.StripExtension,
		},
		cache: make(map[string]*template.Template),
	}
}

// Reset drops every cached template.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*template.Template)
	r.mu.Unlock()
}

// View renders the view called name wrapped in the layout o selects.
func (r *Renderer) View(ctx context.Context, name string, o layout.Options) ([]byte, error) {
	if err := validateViewName(name); err != nil {
		return nil, err
	}

	perf := logging.StartOperation(r.logger, "render_view")
	r.logger.Debug(ctx, "rendering view", "view", "views/"+name, "layout", o.Layout)

	tmpl, err := r.template(ctx, name, apperrors.ErrCodeViewNotFound)
	if err != nil {
		return nil, err
	}

	data := o.Data()

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		perf.EndWithError(ctx, err)
		return nil, apperrors.NewRenderError("could not execute view", err).WithPath(name)
	}

	out, err := r.wrap(ctx, body.Bytes(), o, data)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	perf.End(ctx)
	return out, nil
}

// Listing renders a listing page. A "listing" view in the views tree takes
// precedence over the built-in markup.
func (r *Renderer) Listing(ctx context.Context, page listing.Page, o layout.Options) ([]byte, error) {
	o = o.Apply(layout.WithPage(page))

	if r.views.FileExists(ctx, pathutil.EnsureExtension(ListingView)) {
		return r.View(ctx, ListingView, o)
	}

	var body bytes.Buffer
	if err := ListingBody(page).Render(ctx, &body); err != nil {
		return nil, apperrors.NewRenderError("could not render listing", err)
	}

	return r.wrap(ctx, body.Bytes(), o, o.Data())
}

// Finalize applies the response post-processing. The live-reload client is
// added first so it receives the nonce as well.
func (r *Renderer) Finalize(page []byte, o layout.Options, cspActive bool) []byte {
	out := string(page)
	if o.LiveReload && r.config.LiveReloadPath != "" {
		out = InjectLiveReload(out, r.config.LiveReloadPath)
	}
	if cspActive {
		out = InjectNonce(out, o.Nonce)
	}
	return []byte(out)
}

func (r *Renderer) wrap(ctx context.Context, body []byte, o layout.Options, data map[string]any) ([]byte, error) {
	if o.Layout == "" {
		return body, nil
	}

	tmpl, err := r.template(ctx, o.Layout, apperrors.ErrCodeRenderFailed)
	if err != nil {
		return nil, err
	}

	wrapped := make(map[string]any, len(data)+1)
	for k, v := range data {
		wrapped[k] = v
	}
	// Views are trusted files from the views tree.
	wrapped["body"] = template.HTML(body) // #nosec G203

	var out bytes.Buffer
	if err := tmpl.Execute(&out, wrapped); err != nil {
		return nil, apperrors.NewRenderError("could not execute layout", err).WithPath(o.Layout)
	}

	return out.Bytes(), nil
}

// template loads and parses name. missingCode decides how a missing file is
// reported: a missing view is a 404, a missing layout a render failure.
func (r *Renderer) template(ctx context.Context, name, missingCode string) (*template.Template, error) {
	file := pathutil.EnsureExtension(name)

	if r.config.Cache {
		r.mu.RLock()
		tmpl, ok := r.cache[file]
		r.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	if !r.views.FileExists(ctx, file) {
		if missingCode == apperrors.ErrCodeViewNotFound {
			return nil, apperrors.NewNotFoundError(missingCode, "view does not exist", nil).WithPath(file)
		}
		return nil, apperrors.NewRenderError("layout does not exist", nil).WithPath(file)
	}

	src, err := r.views.ReadFile(ctx, file)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeRenderFailed, "could not read template", err).WithPath(file)
	}

	tmpl, err := template.New(path.Base(file)).Funcs(r.funcs).Parse(string(src))
	if err != nil {
		return nil, apperrors.NewRenderError("could not parse template", err).WithPath(file)
	}

	if r.config.Cache {
		r.mu.Lock()
		r.cache[file] = tmpl
		r.mu.Unlock()
	}

	return tmpl, nil
}

// validateViewName rejects names that could leave the views root.
func validateViewName(name string) error {
	if err := validation.ViewName(name); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidViewName, err.Error()).WithPath(name)
	}
	return nil
}
