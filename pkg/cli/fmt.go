package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/storage"
)

// NewFmtCommand creates the fmt command
func NewFmtCommand() *cobra.Command {
	var (
		compact bool
		write   bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file-or-url>",
		Short: "Reformat a JSON document",
		Long: `Pretty-print a JSON document with two-space indentation, or collapse
it onto a single line with --compact. The result prints to stdout
unless --write rewrites the file in place.

Examples:
  jsongraph fmt config.json
  jsongraph fmt config.json --compact --write
  jsongraph fmt https://api.example.com/state.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if write && remote.IsURL(source) {
				return fmt.Errorf("cannot write back to a URL: %s", source)
			}

			text, err := loadSource(cmd.Context(), source)
			if err != nil {
				return err
			}
			if !gjson.Valid(text) {
				return fmt.Errorf("%s is not valid JSON", source)
			}

			var out []byte
			if compact {
				out = pretty.Ugly([]byte(text))
				out = append(out, '\n')
			} else {
				out = pretty.PrettyOptions([]byte(text), &pretty.Options{Indent: "  "})
			}

			if !write {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}

			abs, err := filepath.Abs(source)
			if err != nil {
				abs = source
			}
			if err := storage.WriteFileAtomic(abs, out, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", source, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Formatted %s\n", source)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "Collapse onto a single line")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")

	return cmd
}
