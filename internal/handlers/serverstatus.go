package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
)

type ServerStatusHandler struct {
	store store.Store
}

func NewServerStatusHandler(s store.Store) *ServerStatusHandler {
	return &ServerStatusHandler{store: s}
}

// serverStatusInput is the write shape for status rows; all fields are
// optional so the same shape serves create, update, and the partial upsert
type serverStatusInput struct {
	ServerName      *string    `json:"server_name"`
	Status          *string    `json:"status"`
	PlayerCount     *int       `json:"player_count"`
	MaxPlayers      *int       `json:"max_players"`
	UptimeSeconds   *int64     `json:"uptime"`
	LastRestart     *time.Time `json:"last_restart"`
	CPUUsage        *float64   `json:"cpu_usage"`
	MemoryUsage     *float64   `json:"memory_usage"`
	MessageOfTheDay *string    `json:"message_of_the_day"`
}

func (in *serverStatusInput) validate() ValidationErrors {
	fieldErrors := ValidationErrors{}
	if in.Status != nil && !models.IsValidStatus(*in.Status) {
		fieldErrors["status"] = fmt.Sprintf("%q is not a valid choice", *in.Status)
	}
	if in.PlayerCount != nil && *in.PlayerCount < 0 {
		fieldErrors["player_count"] = "Ensure this value is greater than or equal to 0"
	}
	if in.MaxPlayers != nil && *in.MaxPlayers < 0 {
		fieldErrors["max_players"] = "Ensure this value is greater than or equal to 0"
	}
	if in.UptimeSeconds != nil && *in.UptimeSeconds < 0 {
		fieldErrors["uptime"] = "Ensure this value is greater than or equal to 0"
	}
	if in.CPUUsage != nil && (*in.CPUUsage < 0 || *in.CPUUsage > 100) {
		fieldErrors["cpu_usage"] = "Ensure this value is between 0 and 100"
	}
	if in.MemoryUsage != nil && (*in.MemoryUsage < 0 || *in.MemoryUsage > 100) {
		fieldErrors["memory_usage"] = "Ensure this value is between 0 and 100"
	}
	return fieldErrors
}

func (in *serverStatusInput) apply(s *models.ServerStatus) {
	if in.ServerName != nil {
		s.ServerName = *in.ServerName
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	if in.PlayerCount != nil {
		s.PlayerCount = *in.PlayerCount
	}
	if in.MaxPlayers != nil {
		s.MaxPlayers = *in.MaxPlayers
	}
	if in.UptimeSeconds != nil {
		s.UptimeSeconds = *in.UptimeSeconds
	}
	if in.LastRestart != nil {
		s.LastRestart = *in.LastRestart
	}
	if in.CPUUsage != nil {
		s.CPUUsage = *in.CPUUsage
	}
	if in.MemoryUsage != nil {
		s.MemoryUsage = *in.MemoryUsage
	}
	if in.MessageOfTheDay != nil {
		s.MessageOfTheDay = *in.MessageOfTheDay
	}
}

// defaultServerStatus mirrors the table defaults for rows created via upsert
func defaultServerStatus() models.ServerStatus {
	return models.ServerStatus{
		ServerName:  "SWG Infinity",
		Status:      models.StatusOffline,
		MaxPlayers:  1000,
		LastRestart: time.Now().UTC(),
	}
}

// List returns all status rows, most recently updated first
func (h *ServerStatusHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.store.ListServerStatus(r.Context())
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}

	payloads := make([]serialize.ServerStatusPayload, 0, len(statuses))
	for _, s := range statuses {
		payloads = append(payloads, serialize.ServerStatusResponse(s))
	}
	writeJSON(w, http.StatusOK, payloads)
}

// Retrieve returns one status row
func (h *ServerStatusHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server status id")
		return
	}

	status, err := h.store.GetServerStatus(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.ServerStatusResponse(status))
}

// Create inserts a new status row
func (h *ServerStatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in serverStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	status := defaultServerStatus()
	in.apply(&status)

	created, err := h.store.CreateServerStatus(r.Context(), status)
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}
	writeJSON(w, http.StatusCreated, serialize.ServerStatusResponse(created))
}

// Update replaces a status row's fields
func (h *ServerStatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.updateByID(w, r)
}

// PartialUpdate applies only the fields present in the payload
func (h *ServerStatusHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.updateByID(w, r)
}

func (h *ServerStatusHandler) updateByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server status id")
		return
	}

	var in serverStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	status, err := h.store.GetServerStatus(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}

	in.apply(&status)
	updated, err := h.store.UpdateServerStatus(r.Context(), status)
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.ServerStatusResponse(updated))
}

// Delete removes a status row
func (h *ServerStatusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server status id")
		return
	}

	if err := h.store.DeleteServerStatus(r.Context(), id); err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentStatus returns the most recently updated status row
func (h *ServerStatusHandler) CurrentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.store.LatestServerStatus(r.Context())
	if err != nil {
		writeStoreError(w, err, "No server status found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.ServerStatusResponse(status))
}

// UpdateStatus partially updates the current status row, creating one if
// none exists. Validation failures return the field map without persisting.
func (h *ServerStatusHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in serverStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	status, err := h.store.LatestServerStatus(r.Context())
	switch {
	case err == nil:
		in.apply(&status)
		updated, err := h.store.UpdateServerStatus(r.Context(), status)
		if err != nil {
			writeStoreError(w, err, "No server status found")
			return
		}
		writeJSON(w, http.StatusOK, serialize.ServerStatusResponse(updated))
	case errors.Is(err, store.ErrNotFound):
		status = defaultServerStatus()
		in.apply(&status)
		created, err := h.store.CreateServerStatus(r.Context(), status)
		if err != nil {
			writeStoreError(w, err, "No server status found")
			return
		}
		writeJSON(w, http.StatusOK, serialize.ServerStatusResponse(created))
	default:
		writeStoreError(w, err, "No server status found")
	}
}
