package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
)

type PlayerStatsHandler struct {
	store store.Store
}

func NewPlayerStatsHandler(s store.Store) *PlayerStatsHandler {
	return &PlayerStatsHandler{store: s}
}

type playerStatsInput struct {
	UserID               *int    `json:"user"`
	TotalSessions        *int    `json:"total_sessions"`
	TotalPlaytimeSeconds *int64  `json:"total_playtime"`
	FavoritePlanet       *string `json:"favorite_planet"`
	CreditsEarned        *int64  `json:"credits_earned"`
	ExperiencePoints     *int64  `json:"experience_points"`
	Level                *int    `json:"level"`
	GuildName            *string `json:"guild_name"`
	PvPKills             *int    `json:"pvp_kills"`
	PvPDeaths            *int    `json:"pvp_deaths"`
}

func (in *playerStatsInput) validate() ValidationErrors {
	fieldErrors := ValidationErrors{}
	if in.TotalSessions != nil && *in.TotalSessions < 0 {
		fieldErrors["total_sessions"] = "Ensure this value is greater than or equal to 0"
	}
	if in.TotalPlaytimeSeconds != nil && *in.TotalPlaytimeSeconds < 0 {
		fieldErrors["total_playtime"] = "Ensure this value is greater than or equal to 0"
	}
	if in.Level != nil && *in.Level < 1 {
		fieldErrors["level"] = "Ensure this value is greater than or equal to 1"
	}
	if in.PvPKills != nil && *in.PvPKills < 0 {
		fieldErrors["pvp_kills"] = "Ensure this value is greater than or equal to 0"
	}
	if in.PvPDeaths != nil && *in.PvPDeaths < 0 {
		fieldErrors["pvp_deaths"] = "Ensure this value is greater than or equal to 0"
	}
	return fieldErrors
}

func (in *playerStatsInput) apply(s *models.PlayerStats) {
	if in.TotalSessions != nil {
		s.TotalSessions = *in.TotalSessions
	}
	if in.TotalPlaytimeSeconds != nil {
		s.TotalPlaytimeSeconds = *in.TotalPlaytimeSeconds
	}
	if in.FavoritePlanet != nil {
		s.FavoritePlanet = in.FavoritePlanet
	}
	if in.CreditsEarned != nil {
		s.CreditsEarned = *in.CreditsEarned
	}
	if in.ExperiencePoints != nil {
		s.ExperiencePoints = *in.ExperiencePoints
	}
	if in.Level != nil {
		s.Level = *in.Level
	}
	if in.GuildName != nil {
		s.GuildName = in.GuildName
	}
	if in.PvPKills != nil {
		s.PvPKills = *in.PvPKills
	}
	if in.PvPDeaths != nil {
		s.PvPDeaths = *in.PvPDeaths
	}
}

// List returns all player stats rows at the caller's tier
func (h *PlayerStatsHandler) List(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ListPlayerStats(r.Context())
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.PlayerStatsList(stats, tierFor(r)))
}

// Retrieve returns one player stats row at the caller's tier
func (h *PlayerStatsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player stats id")
		return
	}

	stats, err := h.store.GetPlayerStats(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.PlayerStatsResponse(stats, tierFor(r)))
}

// Create inserts a stats row for a user
func (h *PlayerStatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in playerStatsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fieldErrors := in.validate()
	if in.UserID == nil {
		fieldErrors["user"] = "This field is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	stats := models.PlayerStats{UserID: *in.UserID, Level: 1}
	in.apply(&stats)

	created, err := h.store.CreatePlayerStats(r.Context(), stats)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusCreated, serialize.PlayerStatsResponse(created, serialize.TierFull))
}

// Update replaces a stats row's fields
func (h *PlayerStatsHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

// PartialUpdate applies only the fields present in the payload
func (h *PlayerStatsHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

func (h *PlayerStatsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player stats id")
		return
	}

	var in playerStatsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	stats, err := h.store.GetPlayerStats(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}

	in.apply(&stats)
	updated, err := h.store.UpdatePlayerStats(r.Context(), stats)
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.PlayerStatsResponse(updated, serialize.TierFull))
}

// Delete removes a stats row
func (h *PlayerStatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player stats id")
		return
	}

	if err := h.store.DeletePlayerStats(r.Context(), id); err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard returns the top players for a metric. Rows with equal metric
// values order by id ascending.
func (h *PlayerStatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = models.MetricLevel
	}
	if !models.IsValidMetric(metric) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"Invalid metric. Valid options: %s, %s, %s, %s",
			models.MetricLevel, models.MetricExperiencePoints,
			models.MetricCreditsEarned, models.MetricPvPKills))
		return
	}

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	top, err := h.store.Leaderboard(r.Context(), metric, limit)
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metric":      metric,
		"leaderboard": serialize.PlayerStatsList(top, serialize.TierPublic),
	})
}

// Statistics returns the server-wide aggregate view
func (h *PlayerStatsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_players":   stats.TotalPlayers,
		"average_level":   math.Round(stats.AverageLevel*10) / 10,
		"total_sessions":  stats.TotalSessions,
		"active_sessions": stats.ActiveSessions,
		"online_players":  stats.OnlinePlayers,
	})
}
