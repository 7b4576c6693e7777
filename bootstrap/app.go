package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"taskhub/api"
	"taskhub/config"
	"taskhub/storage"

	"go.uber.org/zap"
)

// App represents the taskhub server with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	Connections *storage.Manager
	MongoDB     *storage.MongoDB

	// Services
	APIServer *api.API

	// Degraded is set when the server runs without a database connection
	Degraded bool

	// Lifecycle
	listener     net.Listener
	serviceWg    *sync.WaitGroup
	shutdownOnce sync.Once
}

// New assembles an App from an already loaded configuration and logger.
// Manager options are passed through to the connection manager.
func New(cfg *config.Config, logger *zap.Logger, mopts ...storage.ManagerOption) *App {
	sugar := logger.Sugar()
	return &App{
		Config:      cfg,
		Logger:      logger,
		Sugar:       sugar,
		Connections: storage.NewManager(ConnectionOptionsFromConfig(cfg), sugar, mopts...),
		serviceWg:   &sync.WaitGroup{},
	}
}

// NewApp loads configuration and creates the application instance.
func NewApp(ctx context.Context, configFile string) (*App, error) {
	cfg, err := InitConfig(configFile)
	if err != nil {
		return nil, err
	}

	logger, sugar, err := InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	sugar.Info("taskhub starting...")
	LogConfigSummary(cfg, sugar)

	return New(cfg, logger), nil
}

// Start connects to the database and starts the HTTP server.
//
// A configuration error always aborts. An unreachable database aborts only
// when fail_on_db_error is set; otherwise the server starts degraded.
func (a *App) Start(ctx context.Context) error {
	db, err := InitDatabase(ctx, a.Connections, a.Config, a.Sugar)
	if err != nil {
		return err
	}
	a.MongoDB = db
	a.Degraded = db == nil

	a.APIServer = api.NewAPI(a.Connections, a.Config, a.Sugar)

	ln, err := net.Listen("tcp", a.Config.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.ListenAddr(), err)
	}
	a.listener = ln

	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		if err := a.APIServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			a.Sugar.Errorf("API server failed: %v", err)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	if a.Degraded {
		a.Sugar.Warnf("Server started on port %d but database connection failed", port)
	} else {
		a.Sugar.Infof("Server is running on port %d", port)
	}
	return nil
}

// Addr returns the bound HTTP address, or "" before Start
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// WaitForShutdown blocks until SIGINT or SIGTERM arrives.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	<-c
}

// Shutdown stops the HTTP server and closes the database. Safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.Sugar.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.APIServer != nil {
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorf("Failed to stop API server: %v", err)
		}
	}
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.serviceWg.Wait()

	if a.MongoDB != nil {
		if err := a.MongoDB.Close(ctx); err != nil {
			a.Sugar.Errorf("Failed to close MongoDB: %v", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
