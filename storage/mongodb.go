package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabaseName is used when neither the options nor the URI name a database
const DefaultDatabaseName = "taskhub"

// ConnectionOptions configures the MongoDB client and the startup retry policy
type ConnectionOptions struct {
	// Database overrides the database named in the connection string
	Database string
	AppName  string

	// ServerSelectionTimeout bounds each attempt's search for a reachable server
	ServerSelectionTimeout time.Duration
	// SocketTimeout closes sockets idle for longer than this
	SocketTimeout time.Duration
	MaxPoolSize   uint64
	RetryWrites   bool

	// Attempts is the total number of connection attempts at startup
	Attempts int
	// RetryDelay is the constant wait between attempts
	RetryDelay time.Duration
}

// DefaultConnectionOptions returns the options used when nothing is configured
func DefaultConnectionOptions() ConnectionOptions {
	return ConnectionOptions{
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          45 * time.Second,
		MaxPoolSize:            10,
		RetryWrites:            true,
		Attempts:               3,
		RetryDelay:             2 * time.Second,
	}
}

// clientOptions builds driver options for uri. Monitors are supplied by the
// Manager so every client shares the same lifecycle listeners.
func (o ConnectionOptions) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(o.ServerSelectionTimeout).
		SetSocketTimeout(o.SocketTimeout).
		SetMaxPoolSize(o.MaxPoolSize).
		SetRetryWrites(o.RetryWrites)
	if o.AppName != "" {
		opts.SetAppName(o.AppName)
	}
	return opts
}

// databaseName resolves which database the handle should point at
func (o ConnectionOptions) databaseName(uri string) string {
	if o.Database != "" {
		return o.Database
	}
	if cs, err := connstring.Parse(uri); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabaseName
}

// Dialer opens a MongoDB client and confirms a server is reachable
type Dialer interface {
	Dial(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
}

// DialerFunc adapts a function to the Dialer interface
type DialerFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Dial calls f(ctx, opts)
func (f DialerFunc) Dial(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return f(ctx, opts)
}

// driverDialer connects with the real driver and pings the primary
type driverDialer struct{}

func (driverDialer) Dial(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// MongoDB holds the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	// Host is the comma-separated list of hosts the client was configured with
	Host string

	closeOnce sync.Once
	onClose   func()
}

// HealthCheck performs a health check on the MongoDB connection
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return ErrDatabaseClosed
	}
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	var err error
	m.closeOnce.Do(func() {
		if m.onClose != nil {
			m.onClose()
		}
		err = m.Client.Disconnect(ctx)
	})
	return err
}

func hostList(opts *options.ClientOptions) string {
	return strings.Join(opts.Hosts, ",")
}
