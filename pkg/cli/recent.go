package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/storage"
)

// NewRecentCommand creates the recent command
func NewRecentCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened documents",
		Long: `List documents opened in the TUI, most recent first, with how often
each has been opened and how many nodes it had last time.

Examples:
  jsongraph recent
  jsongraph recent --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := storage.NewHistoryStore()
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = history.Close() }()

			docs, err := history.RecentDocuments(limit)
			if err != nil {
				return fmt.Errorf("failed to list recent documents: %w", err)
			}
			if len(docs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No documents opened yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PATH\tLAST OPENED\tOPENS\tNODES")
			_, _ = fmt.Fprintln(w, "────\t───────────\t─────\t─────")
			for _, doc := range docs {
				opened := doc.OpenedAt.Format("2006-01-02 15:04")
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", doc.Path, opened, doc.OpenCount, doc.NodeCount)
			}
			_ = w.Flush()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of documents to list")

	return cmd
}
