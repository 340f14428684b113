// Package cli implements the vegadeck command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vegadeck/pkg/buildinfo"
	"github.com/matzehuels/vegadeck/pkg/cache"
	"github.com/matzehuels/vegadeck/pkg/loaders"
	"github.com/matzehuels/vegadeck/pkg/loaders/elasticsearch"
	"github.com/matzehuels/vegadeck/pkg/loaders/emsfile"
	"github.com/matzehuels/vegadeck/pkg/loaders/urlfetch"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "vegadeck"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "vegadeck",
		Short:        "Vegadeck normalizes Vega and Vega-Lite specifications",
		Long:         `Vegadeck prepares Vega and Vega-Lite specifications for embedding: it parses relaxed HJSON input, extracts host settings, resolves remote data stanzas, compiles Vega-Lite to full Vega, and derives tooltip, sizing and map configuration.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Commands pull the logger back out with loggerFromContext.
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Loader Registry Factory
// =============================================================================

// loaderOpts selects the data loader endpoints and cache behavior for
// CLI runs. The zero value uses the public defaults with caching on.
type loaderOpts struct {
	es      string // elasticsearch endpoint ("" uses the loader default)
	ems     string // EMS file manifest URL ("" uses the public catalog)
	noCache bool   // disable the loader response cache
	refresh bool   // bypass cached responses but still store fresh ones
}

// newRegistry assembles the data loaders for CLI use.
func (c *CLI) newRegistry(opts loaderOpts) (*loaders.Registry, error) {
	backend, err := newCache(opts.noCache)
	if err != nil {
		return nil, err
	}

	es := elasticsearch.New(opts.es, backend)
	es.SetRefresh(opts.refresh)
	ems := emsfile.New(opts.ems, backend)
	ems.SetRefresh(opts.refresh)
	urls := urlfetch.New(backend)
	urls.SetRefresh(opts.refresh)

	registry := loaders.NewRegistry()
	for _, l := range []loaders.Loader{es, ems, urls} {
		if err := registry.Register(l); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/vegadeck/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
