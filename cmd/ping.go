package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"taskhub/bootstrap"
	"taskhub/config"
	"taskhub/storage"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultPingTimeout = 2 * time.Minute

func newPingCmd() *cobra.Command {
	var (
		uri     string
		verbose bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that MongoDB is reachable",
		Long: `Connect to MongoDB with the configured retry policy, report the result
and disconnect. Exits non-zero when the database cannot be reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadDotEnv(config.DefaultDotEnvFile); err != nil {
				return err
			}
			// The failure policy only matters for the server
			viper.Set("fail_on_db_error", true)
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if uri != "" {
				cfg.MongoDB.URI = uri
			}

			logger := zap.NewNop().Sugar()
			if verbose {
				_, logger, err = bootstrap.InitLogger(cfg.Log)
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), timeout)
			defer cancel()

			manager := storage.NewManager(bootstrap.ConnectionOptionsFromConfig(cfg), logger)
			return pingDatabase(ctx, manager, cfg.MongoDB.URI, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "MongoDB connection string (overrides MONGO_DB_URL)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log connection attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultPingTimeout, "Overall time limit")

	return cmd
}

// pingDatabase connects through manager and reports the outcome to out
func pingDatabase(ctx context.Context, manager *storage.Manager, uri string, out io.Writer) error {
	var s *spinner.Spinner
	if !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		s.Suffix = " Connecting to MongoDB..."
		s.Start()
	}

	db, err := manager.Connect(ctx, uri)

	if s != nil {
		s.Stop()
	}

	if err != nil {
		errorColor.Fprintf(out, "✗ %v\n", err)
		var connErr *storage.ConnectivityError
		if errors.As(err, &connErr) {
			fmt.Fprintf(out, "\n%s\n", connErr.Guidance)
		}
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()

	successColor.Fprintf(out, "✓ Connected to MongoDB\n")
	if !quiet {
		infoColor.Fprintf(out, "  Host:     %s\n", db.Host)
		infoColor.Fprintf(out, "  Database: %s\n", db.Database.Name())
	}
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
