package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/config"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/server"
)

// serveCommand runs the layout HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		lf      layoutFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Long: `Serve the layout HTTP API.

Routes:
  GET  /healthz
  POST /v1/layouts                  compute and store a layout
  GET  /v1/layouts/{id}             fetch a stored layout (.json, .svg, .png, .txt)
  POST /v1/layouts/{id}/refit       recompute a stored layout at a new width

Layouts are kept in the configured cache backend. Use the redis backend to
share them between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cfg, err := c.resolveLayout(cmd.Flags(), &lf)
			if err != nil {
				return err
			}
			if noCache {
				c.Logger.Warn("caching disabled; stored layouts will not be retrievable")
			}
			if cmd.Flags().Changed("addr") {
				f.Server.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context(), f, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			logger := loggerFromContext(cmd.Context())
			hooks := observability.NewLogHooks(logger)
			observability.SetLayoutHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetServerHooks(hooks)
			defer observability.Reset()

			srv := server.New(runner, cfg,
				server.WithLogger(logger),
				server.WithDefaultWidth(f.Layout.ContainerWidth))

			printInfo("Listening on %s", StyleNumber.Render(f.Server.Addr))
			printKeyValue("cache", f.Cache.Backend)
			return srv.ListenAndServe(cmd.Context(), f.Server.Addr)
		},
	}

	lf.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
