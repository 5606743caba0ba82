package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/roster"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		force  bool
		status string
	)

	cmd := &cobra.Command{
		Use:   "analyze <soldier-id>",
		Short: "Run one tactical analysis for a roster subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			r := roster.New(roster.Seed(), nil, nil, nil)
			subject, ok := r.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown soldier %q", args[0])
			}
			if status != "" {
				subject.Status = models.Status(status)
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			res, cached, err := svc.Analyze(cmd.Context(), subject, force)
			if err != nil {
				return err
			}
			if cached {
				fmt.Fprintln(os.Stderr, "(cached)")
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the analysis cache")
	cmd.Flags().StringVar(&status, "status", "", "override the subject status (ACTIVE, RESTING, DISTRESS, OFFLINE)")
	return cmd
}
