package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/storage"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <file-or-url>",
		Short: "Show the edit history of a document",
		Long: `List edits recorded for a document, newest first. Each entry shows
the node path that changed and how the document size moved.

Examples:
  jsongraph history config.json
  jsongraph history config.json --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := historyKey(args[0])

			history, err := storage.NewHistoryStore()
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = history.Close() }()

			edits, err := history.EditsFor(key, limit)
			if err != nil {
				return fmt.Errorf("failed to list edits: %w", err)
			}
			if len(edits) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No edits recorded for %s\n", args[0])
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "EDITED\tNODE PATH\tCHANGE")
			_, _ = fmt.Fprintln(w, "──────\t─────────\t──────")
			for _, edit := range edits {
				edited := edit.EditedAt.Format("2006-01-02 15:04:05")
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", edited, edit.NodePath, edit.Summary)
			}
			_ = w.Flush()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of edits to list")

	return cmd
}
