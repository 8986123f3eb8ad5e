package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/redis"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
)

type GameSessionHandler struct {
	store    store.Store
	presence *redis.Presence
}

// NewGameSessionHandler creates a session handler; presence may be nil
// when Redis is not configured.
func NewGameSessionHandler(s store.Store, presence *redis.Presence) *GameSessionHandler {
	return &GameSessionHandler{store: s, presence: presence}
}

// gameSessionCreateInput is the write shape for starting a session
type gameSessionCreateInput struct {
	UserID        *int     `json:"user"`
	CharacterName *string  `json:"character_name"`
	IPAddress     *string  `json:"ip_address"`
	LocationX     *float64 `json:"location_x"`
	LocationY     *float64 `json:"location_y"`
	LocationZ     *float64 `json:"location_z"`
	Planet        *string  `json:"planet"`
}

// gameSessionUpdateInput is the write shape for editing an existing session
type gameSessionUpdateInput struct {
	CharacterName *string    `json:"character_name"`
	LogoutTime    *time.Time `json:"logout_time"`
	IsActive      *bool      `json:"is_active"`
	IPAddress     *string    `json:"ip_address"`
	LocationX     *float64   `json:"location_x"`
	LocationY     *float64   `json:"location_y"`
	LocationZ     *float64   `json:"location_z"`
	Planet        *string    `json:"planet"`
}

func (in *gameSessionUpdateInput) apply(s *models.GameSession) {
	if in.CharacterName != nil {
		s.CharacterName = *in.CharacterName
	}
	if in.LogoutTime != nil {
		s.LogoutTime = in.LogoutTime
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	if in.IPAddress != nil {
		s.IPAddress = in.IPAddress
	}
	if in.LocationX != nil {
		s.LocationX = in.LocationX
	}
	if in.LocationY != nil {
		s.LocationY = in.LocationY
	}
	if in.LocationZ != nil {
		s.LocationZ = in.LocationZ
	}
	if in.Planet != nil {
		s.Planet = in.Planet
	}
}

// List returns all sessions, most recent login first
func (h *GameSessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.GameSessionList(sessions, time.Now().UTC()))
}

// Retrieve returns one session
func (h *GameSessionHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	session, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.GameSessionResponse(session, time.Now().UTC()))
}

// Create starts a new session for a user and marks them online
func (h *GameSessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in gameSessionCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fieldErrors := ValidationErrors{}
	if in.UserID == nil {
		fieldErrors["user"] = "This field is required"
	}
	if in.CharacterName == nil || strings.TrimSpace(*in.CharacterName) == "" {
		fieldErrors["character_name"] = "This field is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	session := models.GameSession{
		UserID:        *in.UserID,
		CharacterName: strings.TrimSpace(*in.CharacterName),
		IPAddress:     in.IPAddress,
		LocationX:     in.LocationX,
		LocationY:     in.LocationY,
		LocationZ:     in.LocationZ,
		Planet:        in.Planet,
	}

	created, err := h.store.CreateSession(r.Context(), session)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	h.presence.SessionStarted(r.Context(), created.UserID)
	log.Printf("[API] Session started: %s (user %d)", created.CharacterName, created.UserID)
	writeJSON(w, http.StatusCreated, serialize.GameSessionResponse(created, time.Now().UTC()))
}

// Update replaces a session's editable fields
func (h *GameSessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

// PartialUpdate applies only the fields present in the payload
func (h *GameSessionHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

func (h *GameSessionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	var in gameSessionUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}

	in.apply(&session)
	updated, err := h.store.UpdateSession(r.Context(), session)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.GameSessionResponse(updated, time.Now().UTC()))
}

// Delete removes a session
func (h *GameSessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	if err := h.store.DeleteSession(r.Context(), id); err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveSessions returns the count and list of currently active sessions
func (h *GameSessionHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ActiveSessions(r.Context())
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": serialize.GameSessionList(sessions, time.Now().UTC()),
	})
}

// UserSessions returns all sessions for the user_id query parameter
func (h *GameSessionHandler) UserSessions(w http.ResponseWriter, r *http.Request) {
	userIDParam := r.URL.Query().Get("user_id")
	if userIDParam == "" {
		writeError(w, http.StatusBadRequest, "user_id parameter required")
		return
	}

	userID, err := strconv.Atoi(userIDParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	sessions, err := h.store.SessionsForUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.GameSessionList(sessions, time.Now().UTC()))
}

// EndSession closes a session and marks its owner offline. Ending an
// already-ended session returns the row unchanged.
func (h *GameSessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	now := time.Now().UTC()
	session, err := h.store.EndSession(r.Context(), id, now)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}

	h.presence.SessionEnded(r.Context(), session.UserID)
	log.Printf("[API] Session ended: %d (user %d)", session.ID, session.UserID)
	writeJSON(w, http.StatusOK, serialize.GameSessionResponse(session, now))
}
