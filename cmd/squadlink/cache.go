package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sustactical/squadlink/pkg/cache"
	cachesqlite "github.com/sustactical/squadlink/pkg/cache/sqlite"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or purge the persistent analysis cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := cachesqlite.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			for _, b := range []string{cache.BucketAnalysis, cache.BucketBriefing} {
				n, err := s.Count(cmd.Context(), b)
				if err != nil {
					return err
				}
				fmt.Printf("%-9s %d\n", b+":", n)
			}
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := cachesqlite.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ttls := map[string]time.Duration{
				cache.BucketAnalysis: cfg.Cache.AnalysisTTL,
				cache.BucketBriefing: cfg.Cache.BriefingTTL,
			}
			var total int64
			now := time.Now()
			for bucket, ttl := range ttls {
				var before time.Time
				if expiredOnly {
					before = now.Add(-ttl)
				}
				n, err := s.Clear(cmd.Context(), bucket, before)
				if err != nil {
					return err
				}
				total += n
			}
			if expiredOnly {
				fmt.Printf("Cleared %d expired cache entries.\n", total)
			} else {
				fmt.Printf("Cleared %d cache entries.\n", total)
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
