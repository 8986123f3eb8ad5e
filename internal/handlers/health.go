package handlers

import (
	"net/http"
	"time"
)

// Version is the API version reported by the health endpoint
const Version = "1.0.0"

// HealthCheck reports API liveness
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"message":   "SWG Infinity API is running",
		"version":   Version,
		"timestamp": time.Now().UTC(),
	})
}
