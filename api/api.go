// Package api serves the operational HTTP surface of taskhub: health and metrics.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"taskhub/config"
	"taskhub/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DatabaseStatus reports whether the document store is reachable
type DatabaseStatus interface {
	State() storage.ConnectionState
}

// API holds the API server
type API struct {
	router         *mux.Router
	server         *http.Server
	serverMu       sync.Mutex
	database       DatabaseStatus
	config         *config.Config
	logger         *zap.SugaredLogger
	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewAPI creates a new API server. database may be nil when persistence is unavailable.
func NewAPI(database DatabaseStatus, config *config.Config, logger *zap.SugaredLogger) *API {
	api := &API{
		router:       mux.NewRouter(),
		database:     database,
		config:       config,
		logger:       logger,
		rateLimiters: make(map[string]*rateLimiterEntry),
		stopCh:       make(chan struct{}),
	}
	api.setupRoutes()
	go api.cleanupRateLimiters()
	return api
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.requestLogMiddleware)
	if a.config.Server.RateLimit.Enabled {
		a.router.Use(a.rateLimitMiddleware)
	}
	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Handler returns the root HTTP handler
func (a *API) Handler() http.Handler {
	return a.router
}

// Serve serves requests on an already bound listener
func (a *API) Serve(ln net.Listener) error {
	return a.newServer(ln.Addr().String()).Serve(ln)
}

func (a *API) newServer(addr string) *http.Server {
	a.serverMu.Lock()
	defer a.serverMu.Unlock()
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
	}
	return a.server
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopCh) })
	a.serverMu.Lock()
	server := a.server
	a.serverMu.Unlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}
