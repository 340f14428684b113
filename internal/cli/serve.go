package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vegadeck/internal/api"
	"github.com/matzehuels/vegadeck/pkg/config"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the normalization HTTP API",
		Long: `Run the normalization HTTP API.

The server exposes POST /v1/normalize for single-shot normalization and a
small CRUD surface for saved specifications. Backends (response cache,
spec store, data loaders) are assembled from a TOML config file; without
one, the server runs with in-memory backends and default endpoints.

The server shuts down gracefully on SIGINT and SIGTERM.

Examples:
  vegadeck serve                          # In-memory backends on :8080
  vegadeck serve --config vegadeck.toml   # Production config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (built-in defaults if empty)")

	return cmd
}

// runServe loads the config, assembles the server, and blocks until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	server, err := api.New(ctx, &cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	c.Logger.Info("starting server",
		"listen", cfg.Server.Listen,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend)
	return server.Run(ctx)
}
