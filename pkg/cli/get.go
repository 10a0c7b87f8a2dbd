package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/dshills/jsongraph/pkg/jsonpath"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var (
		compact bool
		raw     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "get <file-or-url> <path>",
		Short: "Query a document by path",
		Long: `Evaluate a bracket-path expression against a document and print the
matching values. Paths use the same syntax the TUI displays: $ for the
root, ["key"] for object members, [0] for array elements. Wildcards,
slices, and [?(...)] filters select multiple values.

Examples:
  jsongraph get config.json '$["server"]["port"]'
  jsongraph get config.json '$["users"][*]["name"]' --raw
  jsongraph get https://api.example.com/state.json '$["items"][0]' --compact`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadSourceCached(cmd.Context(), args[0], !noCache)
			if err != nil {
				return err
			}

			results, err := jsonpath.QueryAll(text, args[1])
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if len(results) == 0 {
				return fmt.Errorf("no value at %s", args[1])
			}

			for _, res := range results {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatResult(res, compact, raw))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "Print values on a single line")
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print string values without quotes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Always fetch remote documents, skipping the response cache")

	return cmd
}

// formatResult renders one query result for terminal output
func formatResult(res gjson.Result, compact, raw bool) string {
	if raw && res.Type == gjson.String {
		return res.String()
	}
	if compact {
		return string(pretty.Ugly([]byte(res.Raw)))
	}
	if res.IsObject() || res.IsArray() {
		out := pretty.PrettyOptions([]byte(res.Raw), &pretty.Options{Indent: "  "})
		// Pretty appends a trailing newline; the caller adds its own
		return trimTrailingNewline(string(out))
	}
	return res.Raw
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
