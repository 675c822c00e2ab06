package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/internal/server"
	"github.com/matzehuels/fluidc/pkg/metrics"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve community detection over HTTP.

Results are cached in Redis when [cache].redis_url is configured and runs are
recorded in MongoDB when [history].mongo_uri is configured; otherwise the
local file backends are used. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := server.Options{
				Logger:         c.Logger,
				ApplyDefaults:  cfg.Defaults.ApplyTo,
				RequestTimeout: cfg.Server.RequestTimeout,
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			}
			if !noMetrics {
				reg := metrics.NewRegistry()
				reg.Install()
				opts.Metrics = reg.Handler()
			}

			printInfo("Serving on %s", StyleValue.Render(addr))
			return server.New(runner, opts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics")

	return cmd
}
