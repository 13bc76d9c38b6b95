package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxN    int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tower-set counts over HTTP",
		Long: `Start an HTTP server exposing the counts as JSON:

  GET /healthz
  GET /v1/sequence?n=N&sizes=1,2
  GET /v1/sequence/{n}
  GET /v1/verify?n=N

Requests are capped at --max-n blocks and server.max_concurrent parallel
computations; identical concurrent requests share one computation.

The server shares the configured result cache, so a redis or mongo backend
lets several instances reuse each other's results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("max-n") {
				maxN = c.cfg.Server.MaxN
			}
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.New(runner, api.Options{
				MaxN:          maxN,
				LevelSizes:    c.cfg.LevelSizes,
				Workers:       c.cfg.Workers,
				MaxConcurrent: c.cfg.Server.MaxConcurrent,
				Logger:        c.Logger,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().IntVar(&maxN, "max-n", api.DefaultMaxN, "largest N a request may ask for (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
