// Package server dispatches requests for the demo site: generated component
// docs, listings of the views tree, and rendered example and test pages.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/demoapp/internal/config"
	"github.com/conneroisu/demoapp/internal/content"
	"github.com/conneroisu/demoapp/internal/docs"
	apperrors "github.com/conneroisu/demoapp/internal/errors"
	"github.com/conneroisu/demoapp/internal/layout"
	"github.com/conneroisu/demoapp/internal/listing"
	"github.com/conneroisu/demoapp/internal/livereload"
	"github.com/conneroisu/demoapp/internal/locale"
	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/mockdata"
	"github.com/conneroisu/demoapp/internal/render"
)

// LiveReloadPath is where the reload websocket is mounted.
const LiveReloadPath = "/__livereload"

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators of a Server. Nil fields are built from the
// configuration.
type Deps struct {
	Views    *content.Repository
	Docs     *content.Repository
	Static   *content.Repository
	Catalog  *locale.Catalog
	Mock     *mockdata.Provider
	Hub      *livereload.Hub
	Registry *prometheus.Registry
	Security *SecurityConfig
}

// Server is the demo site HTTP server.
type Server struct {
	config   *config.Config
	logger   logging.Logger
	errors   *apperrors.ErrorHandler
	security *SecurityConfig

	views  *content.Repository
	docsFS *content.Repository
	static *content.Repository

	resolver *layout.Resolver
	listings *listing.Builder
	renderer *render.Renderer
	docs     *docs.Pages
	catalog  *locale.Catalog
	mock     *mockdata.Provider
	hub      *livereload.Hub
	metrics  *Metrics

	base    layout.Options
	handler http.Handler

	serverMutex  sync.RWMutex
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New wires a server from cfg and deps.
func New(cfg *config.Config, deps Deps, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("server configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("server")

	if deps.Views == nil {
		deps.Views = content.NewOSRepository(cfg.Paths.Views, logger)
	}
	if deps.Docs == nil {
		deps.Docs = content.NewOSRepository(cfg.Paths.Docs, logger)
	}
	if deps.Static == nil {
		deps.Static = content.NewOSRepository(cfg.Paths.Static, logger)
	}
	if deps.Catalog == nil {
		catalog, err := locale.Load()
		if err != nil {
			return nil, apperrors.NewConfigError("could not load culture tables", err)
		}
		deps.Catalog = catalog
	}
	if deps.Mock == nil {
		deps.Mock = mockdata.NewProvider(nil, nil)
	}
	if deps.Hub == nil && cfg.Development.LiveReload {
		deps.Hub = livereload.NewHub(livereload.HubConfig{
			AllowedOrigins: []string{cfg.Addr()},
		}, logger)
	}
	if deps.Security == nil {
		deps.Security = DefaultSecurityConfig()
	}

	renderConfig := render.Config{
		// Without a watcher nothing would ever reset the cache.
		Cache: !cfg.IsDevelopment() || deps.Hub != nil,
	}
	if deps.Hub != nil {
		renderConfig.LiveReloadPath = LiveReloadPath
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		errors:   apperrors.NewErrorHandler(logger),
		security: deps.Security,
		views:    deps.Views,
		docsFS:   deps.Docs,
		static:   deps.Static,
		resolver: layout.NewResolver(deps.Views, logger),
		listings: listing.NewBuilder(deps.Views, cfg.Server.BasePath, logger),
		renderer: render.New(deps.Views, renderConfig, logger),
		docs:     docs.New(deps.Docs, logger),
		catalog:  deps.Catalog,
		mock:     deps.Mock,
		hub:      deps.Hub,
		metrics:  NewMetrics(deps.Registry),
		base:     baseOptions(cfg, deps.Hub != nil),
	}
	s.handler = s.routes()

	return s, nil
}

// baseOptions are the options every request starts from.
func baseOptions(cfg *config.Config, liveReload bool) layout.Options {
	return layout.Defaults().Apply(func(o layout.Options) layout.Options {
		o.Title = cfg.Site.Title
		o.Locale = cfg.Site.Locale
		o.Version = cfg.Site.Version
		o.BasePath = cfg.Server.BasePath
		o.CSP = cfg.Security.CSP
		o.LiveReload = liveReload
		return o
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Hub returns the live-reload hub, nil when live reload is off.
func (s *Server) Hub() *livereload.Hub { return s.hub }

// Reload drops cached templates and tells open pages to reload.
func (s *Server) Reload(ctx context.Context, paths ...string) {
	s.renderer.Reset()
	s.metrics.recordReload()
	s.logger.Info(ctx, "content changed, reloading", "files", len(paths))
	if s.hub != nil {
		s.hub.Reload(paths...)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	if s.hub != nil {
		g.Go(func() error { return s.hub.Run(gctx) })
	}

	g.Go(func() error {
		s.logger.Info(gctx, "server listening", "addr", server.Addr, "base_path", s.config.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down server")

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// routes builds the router. Routing is strict: "/components" and
// "/components/" are different pages.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	if s.hub != nil {
		r.Method(http.MethodGet, LiveReloadPath, s.hub)
	}
	r.Method(http.MethodGet, "/docs/*", http.StripPrefix("/docs", s.fileServer(s.docsFS)))

	r.Group(func(r chi.Router) {
		r.Use(s.pageOptions)

		r.Get("/", s.handleRoot)
		r.Get("/index", s.handleDocPage("index.html"))
		r.Get("/kitchen-sink", s.handleKitchenSink)

		r.Get("/components", s.handleDocPage("components/index.html"))
		r.Get("/components/", s.redirectPermanent("components"))
		r.Get("/components/list", s.handleComponentsList)
		r.Get("/components/{component}", s.handleComponentDoc)
		r.Get("/components/{component}/", s.handleComponentSlash)
		r.Get("/components/{component}/list", s.handleComponentListing)
		r.Get("/components/{component}/{example}", s.handleComponentPage)

		r.Get("/patterns", s.handlePatterns)
		r.Get("/patterns/*", s.handlePatterns)

		r.Get("/tests", s.handleTests)
		r.Get("/tests/*", s.handleTests)

		r.Get("/layouts", s.handleLayoutsList)
		r.Get("/layouts/{layout}", s.handleLayout)

		r.Get("/examples", s.handleExamples)
		r.Get("/examples/", s.handleExamples)
		r.Get("/examples/{folder}", s.handleExamples)
		r.Get("/examples/{folder}/", s.handleExamples)
		r.Get("/examples/{folder}/{example}", s.handleExamples)

		r.Get("/performance-tests", s.handlePerformanceTests)

		r.Get("/angular", s.handleAngular)
		r.Get("/angular/*", s.handleAngular)
	})

	r.NotFound(s.handleStatic)

	return r
}
