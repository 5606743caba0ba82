package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sustactical/squadlink/pkg/api"
	"github.com/sustactical/squadlink/pkg/roster"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the roster simulator",
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

			r := roster.New(roster.Seed(), nil, nil, logger.Named("roster"))
			srv := api.New(api.Options{
				Listen:         cfg.Listen,
				AllowedOrigins: cfg.CORS.AllowedOrigins,
				Logger:         logger.Named("api"),
			}, svc, r)

			logger.Info("starting squadlink",
				zap.String("config", configPath),
				zap.String("provider", cfg.Upstream.Provider),
				zap.String("cache_backend", cfg.Cache.Backend),
				zap.String("audit_driver", cfg.Audit.Driver),
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			if cfg.Simulator.Enabled {
				g.Go(func() error { return r.Run(gctx, cfg.Simulator.Interval) })
			}
			err = g.Wait()
			logger.Info("squadlink stopped")
			return err
		},
	}
}
