package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/roster"
)

func newRosterCmd() *cobra.Command {
	var ticks int

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the simulated roster with hazard levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			clk := clock.NewManual(time.Now())
			r := roster.New(roster.Seed(), nil, clk, logger)
			for i := 0; i < ticks; i++ {
				clk.Advance(roster.DefaultInterval)
				r.Tick()
			}
			writeRoster(os.Stdout, r.Snapshot())
			if alerts := r.Alerts(); len(alerts) > 0 {
				fmt.Println()
				writeAlerts(os.Stdout, alerts)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 0, "simulated updates to apply before printing")
	return cmd
}

func writeRoster(w io.Writer, subjects []models.Subject) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tHR\tSPO2\tBATTERY\tHAZARD")
	for _, s := range subjects {
		a := roster.Assess(s)
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%.0f\t%.0f%%\t%.1f%%\t%s\n",
			s.ID, s.Rank, s.Name, s.Status, s.Vitals.HeartRate, s.Vitals.SpO2,
			s.Power.BatteryLevel, a.Level)
	}
	_ = tw.Flush()
}

func writeAlerts(w io.Writer, alerts []models.Alert) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSEVERITY\tTYPE\tMESSAGE")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			time.UnixMilli(a.Timestamp).Format("15:04:05"), a.Severity, a.Type, a.Message)
	}
	_ = tw.Flush()
}
