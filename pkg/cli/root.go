// Package cli implements the jsongraph command-line interface: opening
// documents in the TUI, headless path queries and edits, format conversion,
// schema validation, graph export, and the HTTP server. Commands are built
// with cobra; loggers travel through the command context.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/jsongraph/pkg/storage"
)

var (
	version = "dev" // semantic version, injected via ldflags
	commit  = "none"
	date    = "unknown"
)

// SetVersion records build information for the version command. Called
// from main with values injected at build time.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

// Config holds the global configuration for the jsongraph CLI
type Config struct {
	ConfigDir string
	Debug     bool
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jsongraph",
		Short: "Explore and edit JSON documents as node graphs",
		Long: `jsongraph renders a JSON document as a graph of nodes: every object and
array becomes a box, scalar members become rows inside it. The TUI lets you
navigate the graph, inspect and edit single nodes, search, and filter.
Headless commands cover path queries, edits, conversion, validation, and
Graphviz export. YAML and TOML documents are converted on load.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			level := log.WarnLevel
			if GlobalConfig.Debug {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
				Level:           level,
			})
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf("jsongraph %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.jsongraph)")

	cmd.AddCommand(NewOpenCommand())
	cmd.AddCommand(NewGetCommand())
	cmd.AddCommand(NewSetCommand())
	cmd.AddCommand(NewFmtCommand())
	cmd.AddCommand(NewConvertCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewRecentCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewCredentialCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// initConfig resolves the configuration directory and seeds the default
// config file. Priority: --config-dir flag, JSONGRAPH_CONFIG_DIR, ~/.jsongraph.
func initConfig() error {
	if GlobalConfig.ConfigDir != "" {
		// Propagate the flag so the storage layer resolves the same dir
		if err := os.Setenv("JSONGRAPH_CONFIG_DIR", GlobalConfig.ConfigDir); err != nil {
			return fmt.Errorf("failed to set config dir: %w", err)
		}
	}

	dir, err := storage.DefaultConfigDir()
	if err != nil {
		return err
	}
	GlobalConfig.ConfigDir = dir

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := map[string]interface{}{
			"version":    "1.0",
			"serve_addr": "127.0.0.1:7333",
		}
		data, err := yaml.Marshal(defaultConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(configFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	}

	return nil
}

// GetConfigDir returns the configuration directory path.
// Priority order: 1) JSONGRAPH_CONFIG_DIR env var, 2) GlobalConfig.ConfigDir, 3) ~/.jsongraph
func GetConfigDir() string {
	if envDir := os.Getenv("JSONGRAPH_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".jsongraph"
		}
		return filepath.Join(homeDir, ".jsongraph")
	}
	return GlobalConfig.ConfigDir
}

// ExecuteContext runs the root command under the given context. Errors are
// returned to the caller rather than printed; the root command silences
// cobra's own reporting.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// Execute runs the root command and reports errors to stderr.
func Execute() error {
	if err := ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
