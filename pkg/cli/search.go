package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/graph"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	var textQuery bool

	cmd := &cobra.Command{
		Use:   "search <file-or-url> <expression>",
		Short: "Find nodes matching an expression",
		Long: `Evaluate a boolean expression against every node in the document
graph and list the matches. Expressions see the same variables the TUI
filter prompt does: id, label, kind, depth, path, rowCount, and rows
(a map of the node's scalar fields). With --text the argument is a
plain substring matched against labels, keys, and values instead.

Examples:
  jsongraph search config.json 'kind == "array" && rowCount > 10'
  jsongraph search config.json 'rows.status == "active"'
  jsongraph search config.json admin --text`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			g, err := graph.Build(text)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}

			var matches []*graph.Node
			if textQuery {
				matches = g.Search(args[1])
			} else {
				matches, err = graph.NewFilter().Apply(cmd.Context(), g, args[1])
				if err != nil {
					return err
				}
			}

			if len(matches) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matching nodes")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PATH\tKIND\tLABEL\tROWS")
			_, _ = fmt.Fprintln(w, "────\t────\t─────\t────")
			for _, n := range matches {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", n.Path.String(), n.Kind, n.Label, len(n.Rows))
			}
			_ = w.Flush()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d nodes matched\n", len(matches), g.NodeCount())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&textQuery, "text", "t", false, "Treat the argument as a plain substring")

	return cmd
}
