// Package cmd provides the taskhub command-line interface.
package cmd

import (
	"context"
	"fmt"

	"taskhub/bootstrap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Global flags
var (
	configFile string
	noColor    bool
	quiet      bool
)

// NewRootCmd creates the taskhub command. Without a subcommand it runs the server.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskhub",
		Short: "Task management API server",
		Long: `taskhub serves the task management API backed by MongoDB.

Run without a subcommand to start the server. The database failure policy
must be chosen explicitly with FAIL_ON_DB_ERROR=true|false.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")

	rootCmd.AddCommand(newPingCmd())

	return rootCmd
}

// run initializes and starts the server, then blocks until a shutdown signal.
func run(ctx context.Context) error {
	ctx = contextOrBackground(ctx)

	app, err := bootstrap.NewApp(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()

	return nil
}
