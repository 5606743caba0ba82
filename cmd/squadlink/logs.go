package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sustactical/squadlink/pkg/audit"
	"github.com/sustactical/squadlink/pkg/models"
)

func newLogsCmd() *cobra.Command {
	var (
		limit int
		stats bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent logged analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := audit.Open(cfg.Audit, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if stats {
				l, ok := store.(*audit.Logger)
				if !ok {
					return fmt.Errorf("stats are only available for the sqlite audit driver")
				}
				s, err := l.Stats(cmd.Context())
				if err != nil {
					return err
				}
				writeAuditStats(os.Stdout, s)
				return nil
			}

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeAnalysisLogs(os.Stdout, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", audit.RecentLimit, "max entries to show")
	cmd.Flags().BoolVar(&stats, "stats", false, "show counts per soldier per day")
	return cmd
}

func writeAnalysisLogs(w io.Writer, entries []models.AnalysisLog) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No analyses logged.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSOLDIER\tRISK\tACTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.SoldierID,
			truncate(e.HealthRisk, 28), truncate(e.ImmediateAction, 48))
	}
	_ = tw.Flush()
}

func writeAuditStats(w io.Writer, stats []models.AuditStat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tSOLDIER\tCOUNT")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Day, s.SoldierID, s.Count)
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
