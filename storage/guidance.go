package storage

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

const commonConnectionIssues = "Common issues:\n" +
	"1. IP address not allow-listed on the MongoDB deployment\n" +
	"2. Incorrect username/password\n" +
	"3. Network connectivity issues\n" +
	"4. MongoDB cluster is down\n\n" +
	"To allow-list your IP on Atlas: https://www.mongodb.com/docs/atlas/security-whitelist/"

// ConnectionGuidance returns operator-facing remediation text for a failed
// connection, led by a classified headline when the cause is recognizable.
func ConnectionGuidance(err error) string {
	if headline := classifyConnectionError(err); headline != "" {
		return headline + "\n" + commonConnectionIssues
	}
	return commonConnectionIssues
}

func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "lookup"):
		return "Cannot resolve the MongoDB hostname. Check the host in MONGO_DB_URL and DNS configuration."
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return "Connection refused. MongoDB is probably not running at the configured address."
	case strings.Contains(errStr, "auth error") || strings.Contains(errStr, "authentication failed") ||
		strings.Contains(errStr, "unable to authenticate"):
		return "Authentication failed. Verify the username and password in MONGO_DB_URL."
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(errStr, "server selection timeout") {
		return "Timed out waiting for a reachable MongoDB server."
	}
	return ""
}
