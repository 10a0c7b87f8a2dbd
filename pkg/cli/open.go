package cli

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/document"
	opserrors "github.com/dshills/jsongraph/pkg/errors"
	"github.com/dshills/jsongraph/pkg/graph"
	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/storage"
	"github.com/dshills/jsongraph/pkg/tui"
	"github.com/dshills/jsongraph/pkg/watch"
)

// NewOpenCommand creates the open command
func NewOpenCommand() *cobra.Command {
	var (
		watchFile bool
		readonly  bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "open <file-or-url>",
		Short: "Open a document in the graph TUI",
		Long: `Open a JSON, YAML, or TOML document in the interactive graph view.
Remote documents are fetched over http(s); stored tokens are attached
automatically. YAML and TOML input is converted to JSON on load.

Examples:
  jsongraph open config.json
  jsongraph open deploy.yaml --watch
  jsongraph open https://api.example.com/state.json --readonly`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			ctx := cmd.Context()

			text, err := loadSourceCached(ctx, source, !noCache)
			if err != nil {
				return opserrors.NewOperationalError("open", source, "", err)
			}

			// Surface malformed documents before taking over the terminal
			g, err := graph.Build(text)
			if err != nil {
				return fmt.Errorf("cannot graph %s: %w", source, err)
			}

			level := log.InfoLevel
			if GlobalConfig.Debug {
				level = log.DebugLevel
			}
			logger, closeLog, err := fileLogger(level)
			if err != nil {
				logger = loggerFromContext(ctx)
			} else {
				defer closeLog()
			}

			store := document.NewStore()
			store.Load(text, source)

			app, err := tui.NewApp(store, logger)
			if err != nil {
				return fmt.Errorf("failed to start TUI: %w", err)
			}
			defer func() { _ = app.Close() }()

			key := historyKey(source)
			closeHistory := recordHistory(store, key, g.NodeCount(), logger)
			defer closeHistory()

			local := !remote.IsURL(source)
			if local && !readonly {
				abs, err := filepath.Abs(source)
				if err != nil {
					abs = source
				}
				app.SetSaveFunc(func(text string) error {
					if err := storage.WriteFileAtomic(abs, []byte(text), 0644); err != nil {
						return opserrors.NewOperationalError("save", abs, "", err)
					}
					return nil
				})
			}

			if watchFile {
				if !local {
					logger.Warn("watch ignored for remote documents", "source", source)
				} else {
					watcher, err := watch.New(source, app.ReloadFunc(), logger)
					if err != nil {
						return fmt.Errorf("failed to watch %s: %w", source, err)
					}
					if err := watcher.Start(ctx); err != nil {
						return fmt.Errorf("failed to start watcher: %w", err)
					}
					defer watcher.Stop()
				}
			}

			return app.Run()
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Reload when the file changes on disk")
	cmd.Flags().BoolVar(&readonly, "readonly", false, "Disable saving back to the source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Always fetch remote documents, skipping the response cache")

	return cmd
}

// recordHistory notes the open and subscribes edit records. History failures
// are logged and never interrupt the session.
func recordHistory(store *document.Store, key string, nodeCount int, logger *log.Logger) func() {
	history, err := storage.NewHistoryStore()
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return func() {}
	}

	if err := history.TouchDocument(key, nodeCount); err != nil {
		logger.Warn("recording open", "err", err)
	}

	prevSize := len(store.Contents())
	store.Subscribe(func(change document.Change) {
		if change.Reason != document.ReasonNodeEdit && change.Reason != document.ReasonDelete {
			prevSize = len(change.Contents)
			return
		}
		summary := fmt.Sprintf("%d -> %d bytes", prevSize, len(change.Contents))
		prevSize = len(change.Contents)
		if _, err := history.RecordEdit(key, change.NodePath.String(), summary); err != nil {
			logger.Warn("recording edit", "err", err)
		}
	})

	return func() { _ = history.Close() }
}
