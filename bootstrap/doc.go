// Package bootstrap wires configuration, logging, the MongoDB connection and
// the HTTP server into a runnable application.
//
// Usage:
//
//	app, err := bootstrap.NewApp(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Shutdown()
//
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Wait for shutdown signal
//	app.WaitForShutdown()
package bootstrap
