package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/convert"
	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/storage"
)

// NewConvertCommand creates the convert command
func NewConvertCommand() *cobra.Command {
	var (
		fromName string
		toName   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "convert <file-or-url>",
		Short: "Convert between JSON, YAML, and TOML",
		Long: `Convert a document between JSON, YAML, and TOML. The input format is
detected from the file extension unless --from overrides it; the output
format comes from --to, or from the extension of --output. TOML output
requires a top-level object.

Examples:
  jsongraph convert config.yaml --to json
  jsongraph convert config.json --output config.toml
  jsongraph convert settings.toml --to yaml --output settings.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			from, err := resolveFormat(fromName, source)
			if err != nil {
				return fmt.Errorf("cannot determine input format: %w (use --from)", err)
			}
			to, err := resolveFormat(toName, output)
			if err != nil {
				return fmt.Errorf("cannot determine output format: %w (use --to)", err)
			}

			var data []byte
			if remote.IsURL(source) {
				text, err := loadSource(cmd.Context(), source)
				if err != nil {
					return err
				}
				// loadSource already normalized remote content to JSON
				from = convert.FormatJSON
				data = []byte(text)
			} else {
				data, err = os.ReadFile(source)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", source, err)
				}
			}

			out, err := convert.Convert(data, from, to)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			if output == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}
			if err := storage.WriteFileAtomic(output, out, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Converted %s to %s (%s)\n", source, output, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromName, "from", "", "Input format: json, yaml, or toml (default: by extension)")
	cmd.Flags().StringVar(&toName, "to", "", "Output format: json, yaml, or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// resolveFormat picks an explicit format name over one detected from a
// file path. An empty path with no explicit name is an error.
func resolveFormat(name, path string) (convert.Format, error) {
	if name != "" {
		return convert.ParseFormat(name)
	}
	if path == "" {
		return "", convert.ErrUnknownFormat
	}
	return convert.DetectFormat(path)
}
