package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/swg-infinity/api/internal/middleware"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrors maps field names to validation messages
type ValidationErrors map[string]string

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeStoreError maps store errors to HTTP statuses
func writeStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "Duplicate value violates a unique constraint")
	default:
		log.Printf("[API] Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// idFromPath parses the {id} path segment
func idFromPath(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

// tierFor picks the response tier from the caller's token
func tierFor(r *http.Request) serialize.Tier {
	if middleware.IsStaff(r) {
		return serialize.TierFull
	}
	return serialize.TierPublic
}
