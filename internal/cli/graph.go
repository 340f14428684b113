package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vegadeck/pkg/dataflow"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// validGraphFormats is the set of supported graph output formats.
var validGraphFormats = map[string]bool{
	formatDOT: true,
	formatSVG: true,
}

// graphCommand creates the graph command for data-flow diagrams.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph [spec-file]",
		Short: "Render the data-flow graph of a specification",
		Long: `Render the data-flow graph of a specification.

The graph shows every data stanza as a node: inline values, remote url
descriptors, and datasets derived from other datasets through source
references. Conflicting stanzas and references to undefined datasets are
highlighted.

Reads from stdin when no file is given or the file is "-".

Examples:
  vegadeck graph chart.json                     # DOT to stdout
  vegadeck graph chart.json -f svg -o flow.svg  # Rendered SVG
  vegadeck graph --detailed chart.json          # Include loader details`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validGraphFormats[format] {
				return fmt.Errorf("invalid format: %q (use \"dot\" or \"svg\")", format)
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runGraph(cmd.Context(), input, format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot (default), svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include kind, loader type and detail in node labels")

	return cmd
}

// runGraph parses the spec, builds the data-flow graph, and writes it in
// the requested format.
func (c *CLI) runGraph(ctx context.Context, input, format, output string, detailed bool) error {
	logger := loggerFromContext(ctx)

	raw, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}
	doc, err := spec.Parse(raw)
	if err != nil {
		return err
	}

	g := dataflow.Build(doc)
	dot := dataflow.ToDOT(g, dataflow.Options{Detailed: detailed})

	payload := []byte(dot)
	if format == formatSVG {
		spinner := newSpinnerWithContext(ctx, "Rendering data-flow graph...")
		spinner.Start()
		payload, err = dataflow.RenderSVG(dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(payload); err != nil {
		return err
	}

	if output != "" {
		printSuccess("Graphed %d datasets with %d dependencies", len(g.Nodes()), len(g.Edges()))
		printFile(output)
	} else {
		logger.Infof("Graphed %d datasets with %d dependencies", len(g.Nodes()), len(g.Edges()))
	}
	return nil
}
