package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Warnw("Failed to encode response", "error", err)
	}
}

// writeError writes an error response to the client and logs the cause
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if err != nil && logger != nil {
		logger.Errorw(message,
			"error", err.Error(),
			"status_code", statusCode,
		)
	}
	writeJSON(w, statusCode, map[string]string{"error": message}, logger)
}
