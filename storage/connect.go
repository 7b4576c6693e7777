package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskhub/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Manager owns the process-wide MongoDB connection lifecycle: the startup
// retry policy and the lifecycle listeners. Construct one per process.
type Manager struct {
	opts   ConnectionOptions
	dialer Dialer
	timer  backoff.Timer
	logger *zap.SugaredLogger

	serverMonitor *event.ServerMonitor
	poolMonitor   *event.PoolMonitor

	mu               sync.RWMutex
	listeners        []subscription
	nextID           uint64
	state            ConnectionState
	everConnected    bool
	heartbeatFailing bool
	closed           bool
}

// ManagerOption customizes a Manager
type ManagerOption func(*Manager)

// WithDialer replaces the driver-backed dialer
func WithDialer(d Dialer) ManagerOption {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithTimer replaces the timer used to wait between attempts
func WithTimer(t backoff.Timer) ManagerOption {
	return func(m *Manager) {
		m.timer = t
	}
}

// NewManager creates the connection manager and registers the logging
// listener. Listener registration happens here, once, and never in Connect.
func NewManager(opts ConnectionOptions, logger *zap.SugaredLogger, mopts ...ManagerOption) *Manager {
	m := &Manager{
		opts:   opts,
		dialer: driverDialer{},
		logger: logger,
		state:  StateDisconnected,
	}
	for _, opt := range mopts {
		opt(m)
	}
	m.serverMonitor = m.newServerMonitor()
	m.poolMonitor = m.newPoolMonitor()
	m.Subscribe(m.logListener)
	return m
}

// Connect dials MongoDB, retrying up to the configured number of attempts
// with a constant delay between them. A missing uri fails immediately with a
// *ConfigurationError; exhausting the attempts returns a *ConnectivityError
// wrapping the last failure.
func (m *Manager) Connect(ctx context.Context, uri string) (*MongoDB, error) {
	if strings.TrimSpace(uri) == "" {
		m.logger.Error("MONGO_DB_URL environment variable is not set")
		return nil, &ConfigurationError{Key: "MONGO_DB_URL", Err: ErrMissingURI}
	}

	attempts := m.opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	clientOpts := m.opts.clientOptions(uri).
		SetServerMonitor(m.serverMonitor).
		SetPoolMonitor(m.poolMonitor)
	host := hostList(clientOpts)

	m.mu.Lock()
	m.closed = false
	m.mu.Unlock()

	var (
		client  *mongo.Client
		attempt int
	)
	operation := func() error {
		attempt++
		c, err := m.dialer.Dial(ctx, clientOpts)
		if err != nil {
			metrics.MongoConnectionAttempts.WithLabelValues("failure").Inc()
			// the driver publishes no heartbeat failures before its first connection
			m.emit(ConnectionEvent{Kind: EventError, Host: host, Err: err})
			return err
		}
		metrics.MongoConnectionAttempts.WithLabelValues("success").Inc()
		client = c
		return nil
	}
	notify := func(err error, next time.Duration) {
		m.logger.Warnw(fmt.Sprintf("MongoDB connection failed. Retrying... (%d attempts left)", attempts-attempt),
			"error", err,
			"retry_in", next)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.opts.RetryDelay), uint64(attempts-1)),
		ctx)

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, m.timer); err != nil {
		guidance := ConnectionGuidance(err)
		m.logger.Errorw("Failed to connect to MongoDB after multiple attempts",
			"attempts", attempt,
			"error", err)
		m.logger.Error(guidance)
		return nil, &ConnectivityError{Attempts: attempt, Err: err, Guidance: guidance}
	}

	m.logger.Infof("Connected to MongoDB: %s", host)
	m.setReachable(true, host)

	return &MongoDB{
		Client:   client,
		Database: client.Database(m.opts.databaseName(uri)),
		Host:     host,
		onClose:  m.detach,
	}, nil
}

// detach silences lifecycle events for a client that is being shut down
func (m *Manager) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.state = StateDisconnected
	m.everConnected = false
	m.heartbeatFailing = false
	metrics.MongoConnected.Set(0)
}
