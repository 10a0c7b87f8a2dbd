package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/document"
	opserrors "github.com/dshills/jsongraph/pkg/errors"
	"github.com/dshills/jsongraph/pkg/jsonpath"
	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/storage"
)

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "set <file-or-url> <path> <value>",
		Short: "Assign a value at a path",
		Long: `Parse <value> as JSON and assign it at <path>, creating missing
intermediate objects and arrays along the way. A path of $ replaces the
whole document. The updated document prints to stdout unless --write
rewrites the file in place.

Examples:
  jsongraph set config.json '$["server"]["port"]' 8080
  jsongraph set config.json '$["tags"][2]' '"staging"' --write
  jsongraph set config.json '$' '{"reset": true}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, expr, value := args[0], args[1], args[2]
			if write && remote.IsURL(source) {
				return fmt.Errorf("cannot write back to a URL: %s", source)
			}

			text, err := loadSource(cmd.Context(), source)
			if err != nil {
				return err
			}

			path, err := jsonpath.Parse(expr)
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", expr, err)
			}

			store := document.NewStore()
			store.Load(text, source)
			if err := store.SaveNodeText(path, value); err != nil {
				return opserrors.NewOperationalError("set", source, path.String(), err)
			}

			if !write {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.Contents())
				return nil
			}

			abs, err := filepath.Abs(source)
			if err != nil {
				abs = source
			}
			if err := storage.WriteFileAtomic(abs, []byte(store.Contents()), 0644); err != nil {
				return opserrors.NewOperationalError("set", abs, path.String(), err)
			}
			recordSetEdit(cmd, abs, path.String(), len(text), len(store.Contents()))

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", path.String(), source)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")

	return cmd
}

// recordSetEdit appends to the edit history. History failures are
// logged and never fail the command.
func recordSetEdit(cmd *cobra.Command, documentPath, nodePath string, before, after int) {
	logger := loggerFromContext(cmd.Context())
	history, err := storage.NewHistoryStore()
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer func() { _ = history.Close() }()

	summary := fmt.Sprintf("%d -> %d bytes", before, after)
	if _, err := history.RecordEdit(documentPath, nodePath, summary); err != nil {
		logger.Warn("failed to record edit", "error", err)
	}
}
