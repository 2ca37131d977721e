package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/onegreenvn/ads-proposal-backend/internal/app"
)

func newRollbackCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "rollback <proposal-id>",
		Short: "Roll back the active execution of a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				result, err := a.Engine.Rollback(cmd.Context(), args[0], reason)
				if err != nil {
					return fmt.Errorf("rolling back %s: %w", args[0], err)
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the change is undone (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <proposal-id>",
		Short: "Show the before/after impact of a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				report, err := a.Tracker.GetImpactReport(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("building impact report: %w", err)
				}
				return printJSON(report)
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the impact of executed proposals to an Excel file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				result, err := a.Excel.ExportImpact(cmd.Context())
				if err != nil {
					return fmt.Errorf("exporting impact: %w", err)
				}

				path := filepath.Join(outDir, result.Filename)
				if err := os.WriteFile(path, result.Content.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Printf("Wrote %d rows to %s\n", result.Rows, path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the workbook to")

	return cmd
}
