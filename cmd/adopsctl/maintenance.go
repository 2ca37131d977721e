package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onegreenvn/ads-proposal-backend/internal/app"
)

func newCleanupCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Skip pending proposals whose campaign is not active",
		Long:  "Lists pending proposals aimed at paused or removed campaigns. Nothing changes unless --apply is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				result, err := a.Sweeper.CleanupInactiveProposals(cmd.Context(), !apply)
				if err != nil {
					return fmt.Errorf("cleaning up proposals: %w", err)
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Mark the proposals as skipped")

	return cmd
}

func newCollectAfterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect-after",
		Short: "Record after snapshots for matured executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				result, err := a.Tracker.CollectAfterSnapshots(cmd.Context())
				if err != nil {
					return fmt.Errorf("collecting after snapshots: %w", err)
				}
				return printJSON(result)
			})
		},
	}
}

func newRunDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-due",
		Short: "Execute approvals whose scheduled time has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				result, err := a.Engine.ExecuteDue(cmd.Context())
				if err != nil {
					return fmt.Errorf("executing due proposals: %w", err)
				}
				return printJSON(result)
			})
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one full sweep (due approvals, after snapshots, cleanup)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return printJSON(a.Scheduler.RunOnce(cmd.Context()))
			})
		},
	}
}
