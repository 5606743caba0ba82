package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sustactical/squadlink/pkg/mcp"
	"github.com/sustactical/squadlink/pkg/roster"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve squad tools to an MCP client over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := buildService(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			// stdout carries protocol frames; zap's production config logs to stderr.
			r := roster.New(roster.Seed(), nil, nil, logger.Named("roster"))
			srv := mcp.New(svc, r, version, logger.Named("mcp"))

			g, gctx := errgroup.WithContext(ctx)
			if cfg.Simulator.Enabled {
				g.Go(func() error { return r.Run(gctx, cfg.Simulator.Interval) })
			}
			g.Go(func() error {
				defer stop()
				return srv.Run(gctx, os.Stdin, os.Stdout)
			})
			return g.Wait()
		},
	}
}
