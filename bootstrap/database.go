package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"taskhub/config"
	"taskhub/storage"

	"go.uber.org/zap"
)

const startupChecklist = "Please check:\n" +
	"1. MongoDB connection string in .env file\n" +
	"2. Your IP is allow-listed on the MongoDB deployment\n" +
	"3. MongoDB credentials are correct"

// InitDatabase connects to MongoDB through the process-wide manager.
//
// A *storage.ConfigurationError is always returned to the caller. A
// *storage.ConnectivityError is returned when cfg.FailOnDBError is set;
// otherwise it is logged and InitDatabase returns (nil, nil) so startup can
// continue without persistence.
func InitDatabase(ctx context.Context, manager *storage.Manager, cfg *config.Config, sugar *zap.SugaredLogger) (*storage.MongoDB, error) {
	db, err := manager.Connect(ctx, cfg.MongoDB.URI)
	if err == nil {
		return db, nil
	}

	var cfgErr *storage.ConfigurationError
	if errors.As(err, &cfgErr) {
		sugar.Errorw("Failed to start server", "error", err)
		return nil, err
	}

	sugar.Errorw("Failed to start server", "error", err)
	sugar.Error(startupChecklist)

	if cfg.FailOnDBError {
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: MongoDB Connection Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		var connErr *storage.ConnectivityError
		if errors.As(err, &connErr) {
			fmt.Fprintf(os.Stderr, "%s\n", connErr.Guidance)
		}
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, err
	}

	sugar.Warnw("Continuing without a database connection",
		"fail_on_db_error", false)
	return nil, nil
}
