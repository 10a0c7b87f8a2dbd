package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/graph"
	"github.com/dshills/jsongraph/pkg/schema"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var (
		schemaPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "validate <file-or-url>",
		Short: "Validate a document",
		Long: `Validate a JSON document for correctness.

This checks:
- JSON syntax
- Nesting depth against the explorer's limit
- Conformance to a JSON Schema, when --schema is given

Examples:
  jsongraph validate config.json
  jsongraph validate config.json --schema config.schema.json
  jsongraph validate https://api.example.com/state.json --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			text, err := loadSource(cmd.Context(), source)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "✗ Failed to load document")
				if verbose {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  Error: %v\n", err)
				}
				return err
			}

			g, err := graph.Build(text)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "✗ Document is not valid JSON")
				if verbose {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  Error: %v\n", err)
				}
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Document is well-formed JSON")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Parsed %d nodes\n", g.NodeCount())

			if schemaPath != "" {
				validator, err := schema.NewValidatorFromFile(schemaPath)
				if err != nil {
					_, _ = fmt.Fprintln(cmd.OutOrStderr(), "✗ Failed to load schema")
					if verbose {
						_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  Error: %v\n", err)
					}
					return err
				}

				result, err := validator.ValidateText(text)
				if err != nil {
					return fmt.Errorf("schema validation failed to run: %w", err)
				}
				if !result.Valid {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "✗ %s\n", result.Summary())
					for _, issue := range result.Issues {
						_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  %s\n", issue)
					}
					return fmt.Errorf("document does not conform to %s", schemaPath)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Document conforms to schema")
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n✓ %s is valid\n", source)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file to validate against")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed validation information")

	return cmd
}
