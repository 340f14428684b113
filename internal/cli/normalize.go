package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vegadeck/pkg/normalize"
	"github.com/matzehuels/vegadeck/pkg/vegalite"
)

// normalizeOpts holds the command-line flags for the normalize command.
// These options control data resolution, caching, and output formatting.
type normalizeOpts struct {
	output   string // output file path (stdout if empty)
	compact  bool   // emit compact JSON instead of indented
	noCache  bool   // disable the loader response cache
	refresh  bool   // bypass cached loader responses
	compiler string // vega-lite compiler command override
	es       string // elasticsearch endpoint for data resolution
	ems      string // EMS file manifest URL
	keepURLs bool   // skip data resolution, keep url stanzas in place
}

// normalizeCommand creates the normalize command, the main entry point of
// the pipeline.
func (c *CLI) normalizeCommand() *cobra.Command {
	opts := normalizeOpts{}

	cmd := &cobra.Command{
		Use:   "normalize [spec-file]",
		Short: "Normalize a Vega or Vega-Lite specification",
		Long: `Normalize a Vega or Vega-Lite specification for embedding.

The command parses relaxed HJSON input, extracts host settings from the
config block, resolves remote data stanzas (elasticsearch, EMS files, plain
URLs), compiles Vega-Lite sources to full Vega, and derives tooltip, sizing
and map configuration. The result is a JSON document with the resolved spec
and the derived configs.

Reads from stdin when no file is given or the file is "-".

Examples:
  vegadeck normalize chart.json                 # Resolve and print to stdout
  vegadeck normalize chart.json -o out.json     # Write result to a file
  vegadeck normalize --keep-urls chart.json     # Offline: leave urls in place
  cat chart.json | vegadeck normalize --es http://localhost:9200`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runNormalize(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "emit compact JSON instead of indented")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the loader response cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached loader responses")
	cmd.Flags().StringVar(&opts.compiler, "compiler", "", "vega-lite compiler command (default \"vl2vg\")")
	cmd.Flags().StringVar(&opts.es, "es", "", "elasticsearch endpoint (default \"http://localhost:9200\")")
	cmd.Flags().StringVar(&opts.ems, "ems", "", "EMS file manifest URL")
	cmd.Flags().BoolVar(&opts.keepURLs, "keep-urls", false, "skip data resolution, keep url stanzas in place")

	return cmd
}

// runNormalize reads the spec, runs the pipeline, and writes the result.
func (c *CLI) runNormalize(ctx context.Context, input string, opts normalizeOpts) error {
	raw, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}

	registry, err := c.newRegistry(loaderOpts{
		es:      opts.es,
		ems:     opts.ems,
		noCache: opts.noCache,
		refresh: opts.refresh,
	})
	if err != nil {
		return fmt.Errorf("initialize loaders: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Normalizing specification...")
	spinner.Start()

	result := normalize.Normalize(ctx, raw, normalize.Options{
		SkipData: opts.keepURLs,
		Loaders:  registry,
		Compiler: vegalite.NewExecCompiler(opts.compiler),
		Logger:   c.Logger,
	})
	if result.Err != nil {
		spinner.StopWithError("Normalization failed")
		for _, w := range result.Warnings {
			printWarning("%s", w)
		}
		return result.Err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeResult(result, opts.output, opts.compact); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	// Keep stdout clean for piping: the styled summary only appears when
	// the result went to a file.
	if opts.output == "" {
		for _, w := range result.Warnings {
			c.Logger.Warnf("%s", w)
		}
		return nil
	}

	printSuccess("Normalized %s specification", result.Dialect)
	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	printFile(opts.output)
	printStats(result.Stats)
	printNewline()
	printNextStep("Inspect data flow", "vegadeck graph "+input)

	return nil
}

// writeResult serializes the pipeline result as JSON to path (or stdout
// if empty).
func writeResult(result *normalize.Result, path string, compact bool) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// readInput reads the spec from path, or from stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
