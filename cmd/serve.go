package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/demoapp/internal/config"
	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/server"
	"github.com/conneroisu/demoapp/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the demo server",
	Long: `Start the demo server. In development the views and docs trees are
watched and open pages reload when a file changes.

Examples:
  demoapp serve                        # Serve on localhost:4000
  demoapp serve -p 8080 --base-path /demo/
  demoapp serve --env production       # Cache templates, no live reload`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return BindFlags(cmd, map[string]string{
			"port":        "server.port",
			"host":        "server.host",
			"base-path":   "server.base_path",
			"env":         "server.environment",
			"views":       "paths.views",
			"docs":        "paths.docs",
			"static":      "paths.static",
			"live-reload": "development.live_reload",
		})
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	AddStandardFlags(serveCmd, "server", "paths")
	serveCmd.Flags().String("env", "development", "Environment (development, production, test)")
	serveCmd.Flags().Bool("live-reload", true, "Reload open pages when views change")

	AddFlagValidation(serveCmd, "port", ValidatePort)
	AddFlagValidation(serveCmd, "base-path", ValidateBasePath)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	srv, err := server.New(cfg, server.Deps{}, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	if srv.Hub() != nil {
		fw, err := newContentWatcher(gctx, cfg, srv, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		g.Go(func() error {
			if err := fw.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			return fw.Stop()
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving demo site at http://%s%s\n", cfg.Addr(), cfg.Server.BasePath)

	return g.Wait()
}

// newContentWatcher watches the views and docs roots and reloads srv on
// every debounced batch of changes. A missing root is skipped.
func newContentWatcher(ctx context.Context, cfg *config.Config, srv *server.Server, logger logging.Logger) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(cfg.Development.ReloadDebounce, logger)
	if err != nil {
		return nil, err
	}

	fw.AddFilter(watcher.ViewFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)

	for _, root := range []string{cfg.Paths.Views, cfg.Paths.Docs} {
		if err := fw.AddRecursive(root); err != nil {
			logger.Warn(ctx, err, "not watching content root", "path", root)
		}
	}

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		paths := make([]string, 0, len(events))
		for _, e := range events {
			paths = append(paths, e.Path)
		}
		srv.Reload(ctx, paths...)
		return nil
	})

	return fw, nil
}
