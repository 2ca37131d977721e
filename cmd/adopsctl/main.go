// Package main provides adopsctl, the operator CLI for the proposal backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onegreenvn/ads-proposal-backend/internal/app"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "adopsctl",
		Short:         "Operate the ad proposal backend from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCleanupCmd(),
		newCollectAfterCmd(),
		newRunDueCmd(),
		newSweepCmd(),
		newRollbackCmd(),
		newImpactCmd(),
		newExportCmd(),
		newTokenCmd(),
		newAPIKeyCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// withApp loads configuration, wires the services and closes them afterwards
func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.ConfigureLogging(cfg.LogLevel, cfg.LogFile)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
