package server

import (
	"errors"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"github.com/conneroisu/demoapp/internal/content"
	apperrors "github.com/conneroisu/demoapp/internal/errors"
	"github.com/conneroisu/demoapp/internal/layout"
	"github.com/conneroisu/demoapp/internal/listing"
	"github.com/conneroisu/demoapp/internal/pathutil"
	"github.com/conneroisu/demoapp/internal/render"
)

var (
	patternExcludes = listing.Names("step-process.html", "step-process-markup.html")
	layoutExcludes  = listing.Names("_masthead.html", "header-only.html", "header-scroll.html", "header-sticky.html")
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.config.Server.BasePath+"kitchen-sink", http.StatusFound)
}

func (s *Server) redirectPermanent(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.config.Server.BasePath+target, http.StatusMovedPermanently)
	}
}

func (s *Server) handleKitchenSink(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r, "kitchen-sink", stateFrom(r.Context()).options)
}

// Generated documentation

func (s *Server) handleDocPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sendDoc(w, r, name)
	}
}

func (s *Server) handleComponentDoc(w http.ResponseWriter, r *http.Request) {
	s.sendDoc(w, r, "components/"+chi.URLParam(r, "component")+".html")
}

// sendDoc writes a generated documentation fragment. A missing fragment is
// a server error and nothing of the page is sent.
func (s *Server) sendDoc(w http.ResponseWriter, r *http.Request, name string) {
	page, err := s.docs.Fragment(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	st := stateFrom(r.Context())
	if st.cspActive {
		page = []byte(render.InjectNonce(string(page), st.options.Nonce))
	}
	writeHTML(w, page)
}

// Components

func (s *Server) handleComponentsList(w http.ResponseWriter, r *http.Request) {
	s.sendDirectoryListing(w, r, "components/")
}

func (s *Server) handleComponentSlash(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.config.Server.BasePath+"components/"+chi.URLParam(r, "component"), http.StatusMovedPermanently)
}

func (s *Server) handleComponentListing(w http.ResponseWriter, r *http.Request) {
	page, err := s.listings.Component(r.Context(), chi.URLParam(r, "component"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderListing(w, r, page)
}

func (s *Server) handleComponentPage(w http.ResponseWriter, r *http.Request) {
	component := chi.URLParam(r, "component")
	example := chi.URLParam(r, "example")

	opts := s.resolver.Component(r.Context(), stateFrom(r.Context()).options, component, example)
	s.renderView(w, r, "components/"+component+"/"+example, opts)
}

// Patterns

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	rest := wildcard(r)
	if rest == "" || rest == "/" {
		s.sendDirectoryListing(w, r, "patterns/", patternExcludes...)
		return
	}

	opts := stateFrom(r.Context()).options.Apply(layout.Patterns.Defaults())
	s.renderView(w, r, "patterns/"+rest, opts)
}

// Tests

// handleTests serves everything below /tests. A path naming a directory
// renders its index page or lists it. Paths that are neither a page nor a
// directory are redirected to the component folder when the page moved there.
func (s *Server) handleTests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rest := wildcard(r)

	if rest == "" || rest == "/" {
		s.sendDirectoryListing(w, r, "tests/")
		return
	}

	dir := "tests/" + rest
	if pathutil.HasTrailingSlash(dir) {
		if s.views.Is(ctx, content.KindDirectory, dir) {
			s.sendDirectoryListing(w, r, dir)
			return
		}
		dir = pathutil.TrimTrailingSlash(dir)
	}

	opts := s.resolver.Tests(stateFrom(ctx).options, dir)

	if s.views.Is(ctx, content.KindDirectory, dir) {
		index := dir + "/index"
		if s.views.Is(ctx, content.KindFile, pathutil.EnsureExtension(index)) {
			s.renderView(w, r, index, opts)
			return
		}
		s.sendDirectoryListing(w, r, dir)
		return
	}

	if s.views.Is(ctx, content.KindFile, pathutil.EnsureExtension(dir)) {
		s.renderView(w, r, dir, opts)
		return
	}

	if target, ok := s.legacyTestPage(r, rest); ok {
		http.Redirect(w, r, s.config.Server.BasePath+target, http.StatusFound)
		return
	}

	s.renderView(w, r, dir, opts)
}

// legacyTestPage maps /tests/<component>/<page> to the page's location in
// the component folder, trying the example- prefix before test-.
func (s *Server) legacyTestPage(r *http.Request, rest string) (string, bool) {
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	component, page := parts[0], parts[1]

	for _, prefix := range []string{"example-", "test-"} {
		target := "components/" + component + "/" + prefix + pathutil.EnsureExtension(page)
		if s.views.FileExists(r.Context(), target) {
			s.logger.Info(r.Context(), "redirecting legacy test page", "from", "tests/"+rest, "to", target)
			return target, true
		}
	}
	return "", false
}

// Layouts

func (s *Server) handleLayoutsList(w http.ResponseWriter, r *http.Request) {
	s.sendDirectoryListing(w, r, "layouts/", layoutExcludes...)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "layout")
	if name == "" {
		s.handleLayoutsList(w, r)
		return
	}

	opts := stateFrom(r.Context()).options.Apply(
		layout.Layouts.Defaults(),
		layout.WithSubtitle(pathutil.Subtitle(pathutil.StripExtension(name))),
	)
	s.renderView(w, r, "layouts/"+name, opts)
}

// Examples

// handleExamples serves the three levels below /examples: the section
// listing, a folder (listed when requested with a trailing slash, otherwise
// rendered as a page) and a page inside a folder.
func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	example := chi.URLParam(r, "example")
	opts := stateFrom(r.Context()).options.Apply(layout.Examples.Defaults())

	if folder == "" {
		s.sendDirectoryListing(w, r, "examples/")
		return
	}

	if example == "" {
		dir := "examples/" + folder + "/"
		if pathutil.HasTrailingSlash(r.URL.Path) && s.views.Is(r.Context(), content.KindDirectory, dir) {
			s.sendDirectoryListing(w, r, dir)
			return
		}
		s.renderView(w, r, "examples/"+folder, opts)
		return
	}

	s.renderView(w, r, "examples/"+folder+"/"+example, opts)
}

// Performance tests and Angular

func (s *Server) handlePerformanceTests(w http.ResponseWriter, r *http.Request) {
	opts := stateFrom(r.Context()).options.Apply(layout.PerformanceTests.Defaults())
	s.renderView(w, r, "performance-tests/index", opts)
}

func (s *Server) handleAngular(w http.ResponseWriter, r *http.Request) {
	rest := wildcard(r)
	if rest == "" || rest == "/" {
		s.sendDirectoryListing(w, r, "angular/")
		return
	}

	opts := stateFrom(r.Context()).options.Apply(layout.Angular.Defaults())
	s.renderView(w, r, "angular/"+rest, opts)
}

// Static files

func (s *Server) fileServer(repo *content.Repository) http.Handler {
	return http.FileServer(afero.NewHttpFs(repo.Fs()))
}

// handleStatic serves files from the static root for every path no route
// matched.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, r, apperrors.NewNotFoundError(apperrors.ErrCodeViewNotFound, "not found", nil))
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if !s.static.FileExists(r.Context(), name) {
		s.writeError(w, r, apperrors.NewNotFoundError(apperrors.ErrCodeViewNotFound, "not found", nil).WithPath(name))
		return
	}

	s.fileServer(s.static).ServeHTTP(w, r)
}

// Responses

func (s *Server) sendDirectoryListing(w http.ResponseWriter, r *http.Request, dir string, exclude ...*regexp.Regexp) {
	page, err := s.listings.Directory(r.Context(), dir, exclude...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderListing(w, r, page)
}

func (s *Server) renderListing(w http.ResponseWriter, r *http.Request, page listing.Page) {
	st := stateFrom(r.Context())
	out, err := s.renderer.Listing(r.Context(), page, st.options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, s.renderer.Finalize(out, st.options, st.cspActive))
}

func (s *Server) renderView(w http.ResponseWriter, r *http.Request, name string, opts layout.Options) {
	out, err := s.renderer.View(r.Context(), name, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, s.renderer.Finalize(out, opts, stateFrom(r.Context()).cspActive))
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// writeError is the terminal error handler: it logs err and writes only its
// status and message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.errors.Handle(r.Context(), err)

	status := apperrors.StatusOf(err)
	message := http.StatusText(status)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		s.metrics.recordError(appErr.Code)
		if appErr.Message != "" {
			message = appErr.Message
		}
	} else {
		s.metrics.recordError(apperrors.ErrCodeInternalError)
	}

	http.Error(w, message, status)
}

// wildcard returns the "*" route parameter with any leading slash removed.
func wildcard(r *http.Request) string {
	return strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}
