package storage

import (
	"errors"
	"fmt"
)

// Storage error constants
var (
	// ErrMissingURI is returned when no MongoDB connection string is configured
	ErrMissingURI = errors.New("MONGO_DB_URL is required")

	// ErrDatabaseClosed is returned when attempting to use a closed database connection
	ErrDatabaseClosed = errors.New("database is closed")
)

// ConfigurationError reports a connection setting that is missing or unusable.
// It is never retried.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid database configuration (%s): %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConnectivityError is returned once every connection attempt has failed.
// Err is the failure of the final attempt.
type ConnectivityError struct {
	Attempts int
	Err      error
	Guidance string
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to connect to MongoDB after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
