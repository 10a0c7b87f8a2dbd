package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/jsongraph/pkg/document"
	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/server"
	"github.com/dshills/jsongraph/pkg/storage"
	"github.com/dshills/jsongraph/pkg/watch"
)

const defaultServeAddr = "127.0.0.1:7333"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		addr      string
		token     string
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "serve <file-or-url>",
		Short: "Serve a document over HTTP",
		Long: `Load a document and expose it through the HTTP API: the raw document,
the node graph, per-node reads and edits, search, filtering, and
Graphviz renderings. With --watch the served document reloads when the
file changes on disk. A bearer token set with --token is required on
every endpoint except /healthz.

The listen address falls back to serve_addr in the config file, then
to 127.0.0.1:7333.

Examples:
  jsongraph serve config.json
  jsongraph serve config.json --addr 0.0.0.0:8080 --watch
  jsongraph serve config.json --token secret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			text, err := loadSource(ctx, source)
			if err != nil {
				return err
			}

			store := document.NewStore()
			store.Load(text, source)

			// Scope /api/file to the served document's directory. Remote
			// sources leave the endpoint disabled.
			var guard *storage.PathGuard
			if !remote.IsURL(source) {
				abs, err := filepath.Abs(source)
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", source, err)
				}
				guard, err = storage.NewPathGuard(filepath.Dir(abs))
				if err != nil {
					return fmt.Errorf("failed to set up file access: %w", err)
				}
			}

			logger := loggerFromContext(ctx)
			if !GlobalConfig.Debug {
				logger.SetLevel(log.InfoLevel)
			}

			if watchFile {
				if remote.IsURL(source) {
					logger.Warn("--watch ignored for remote sources")
				} else {
					watcher, err := watch.New(source, func(path, contents string) {
						store.Load(contents, store.Source())
						logger.Info("reloaded document", "path", path, "bytes", len(contents))
					}, logger)
					if err != nil {
						return fmt.Errorf("failed to watch %s: %w", source, err)
					}
					if err := watcher.Start(ctx); err != nil {
						return fmt.Errorf("failed to start watcher: %w", err)
					}
					defer watcher.Stop()
				}
			}

			if addr == "" {
				addr = configuredServeAddr()
			}

			srv := server.New(store, guard, logger, server.Config{Addr: addr, Token: token})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on http://%s\n", source, addr)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  Press Ctrl+C to stop")

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serve_addr from config)")
	cmd.Flags().StringVar(&token, "token", "", "Require this bearer token on API requests")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Reload when the file changes on disk")

	return cmd
}

// configuredServeAddr reads serve_addr from the config file, falling back
// to the built-in default.
func configuredServeAddr() string {
	data, err := os.ReadFile(filepath.Join(GetConfigDir(), "config.yaml"))
	if err != nil {
		return defaultServeAddr
	}
	var cfg struct {
		ServeAddr string `yaml:"serve_addr"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil || cfg.ServeAddr == "" {
		return defaultServeAddr
	}
	return cfg.ServeAddr
}
