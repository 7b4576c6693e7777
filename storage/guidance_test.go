package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionGuidance(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		headline string
	}{
		{"authentication", errors.New("connection() error occurred during connection handshake: auth error: sasl conversation error"), "Authentication failed"},
		{"authentication failed", errors.New("authentication failed"), "Authentication failed"},
		{"dns", errors.New("lookup cluster0.example.net: no such host"), "Cannot resolve the MongoDB hostname"},
		{"dns host containing auth", errors.New("lookup auth.example.net: no such host"), "Cannot resolve the MongoDB hostname"},
		{"refused host containing auth", errors.New("dial tcp auth-db:27017: connect: connection refused"), "Connection refused"},
		{"refused", errors.New("dial tcp 127.0.0.1:27017: connect: connection refused"), "Connection refused"},
		{"deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), "Timed out waiting"},
		{"server selection", errors.New("server selection timeout, current topology: { Type: Unknown }"), "Timed out waiting"},
		{"unrecognized", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guidance := ConnectionGuidance(tt.err)

			assert.Contains(t, guidance, "Common issues:")
			assert.Contains(t, guidance, "IP address not allow-listed")
			assert.Contains(t, guidance, "Incorrect username/password")
			assert.Contains(t, guidance, "Network connectivity issues")
			assert.Contains(t, guidance, "MongoDB cluster is down")
			if tt.headline == "" {
				assert.Equal(t, commonConnectionIssues, guidance)
			} else {
				assert.True(t, strings.HasPrefix(guidance, tt.headline), "guidance %q", guidance)
			}
		})
	}
}

func TestConnectionGuidance_NilError(t *testing.T) {
	assert.Equal(t, commonConnectionIssues, ConnectionGuidance(nil))
}

func TestConnectionErrors(t *testing.T) {
	cause := errors.New("boom")

	connErr := &ConnectivityError{Attempts: 3, Err: cause}
	assert.Equal(t, "failed to connect to MongoDB after 3 attempts: boom", connErr.Error())
	assert.ErrorIs(t, connErr, cause)

	cfgErr := &ConfigurationError{Key: "MONGO_DB_URL", Err: ErrMissingURI}
	assert.Equal(t, "invalid database configuration (MONGO_DB_URL): MONGO_DB_URL is required", cfgErr.Error())
	assert.ErrorIs(t, cfgErr, ErrMissingURI)
}
