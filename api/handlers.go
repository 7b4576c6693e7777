package api

import (
	"net/http"
	"time"

	"taskhub/storage"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// healthResponse is the body of GET /health
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// healthCheck reports service health. The service is degraded, and answers
// 503, whenever the database is unreachable.
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	dbState := storage.StateDisconnected
	if a.database != nil {
		dbState = a.database.State()
	}

	response := healthResponse{
		Status:   statusHealthy,
		Database: string(dbState),
		Time:     time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK
	if dbState != storage.StateConnected {
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, response, a.logger)
}
