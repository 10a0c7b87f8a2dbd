package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/jsongraph/pkg/graph"
	"github.com/dshills/jsongraph/pkg/render"
	"github.com/dshills/jsongraph/pkg/server"
	"github.com/dshills/jsongraph/pkg/storage"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var (
		format     string
		outputPath string
		horizontal bool
		edgeLabels bool
	)

	cmd := &cobra.Command{
		Use:   "export <file-or-url>",
		Short: "Export the document graph",
		Long: `Render the document's node graph in an exchange format.

Formats:
  dot   Graphviz source (default)
  svg   Rendered SVG image
  png   Rendered PNG image
  json  The graph structure as JSON (nodes and edges)

Examples:
  jsongraph export config.json
  jsongraph export config.json --format svg --output graph.svg
  jsongraph export config.json --format dot --horizontal --edge-labels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			g, err := graph.Build(text)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}

			opts := render.Options{Horizontal: horizontal, EdgeLabels: edgeLabels}
			var out []byte
			switch strings.ToLower(format) {
			case "dot":
				out = []byte(render.ToDOT(g, opts))
			case "svg":
				out, err = render.RenderSVG(render.ToDOT(g, opts))
			case "png":
				out, err = render.RenderPNG(render.ToDOT(g, opts))
			case "json":
				out, err = json.MarshalIndent(server.GraphToDTO(g), "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unknown format %q (want dot, svg, png, or json)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", format, err)
			}

			if outputPath == "" {
				if format == "png" {
					return fmt.Errorf("png output is binary; use --output")
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}

			if err := storage.WriteFileAtomic(outputPath, out, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d nodes to %s (%s)\n", g.NodeCount(), outputPath, format)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "Output format: dot, svg, png, or json")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&horizontal, "horizontal", false, "Lay the graph out left to right")
	cmd.Flags().BoolVar(&edgeLabels, "edge-labels", false, "Label edges with member keys")

	return cmd
}
