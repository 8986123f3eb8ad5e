package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
)

type DashboardHandler struct {
	store store.Store
}

func NewDashboardHandler(s store.Store) *DashboardHandler {
	return &DashboardHandler{store: s}
}

const dashboardListLimit = 5

// Get assembles the composite dashboard snapshot: current server status
// (null when none exists), player counts, recent sessions, and top players.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var serverStatus any
	latest, err := h.store.LatestServerStatus(ctx)
	switch {
	case err == nil:
		serverStatus = serialize.ServerStatusResponse(latest)
	case errors.Is(err, store.ErrNotFound):
		serverStatus = nil
	default:
		writeStoreError(w, err, "No server status found")
		return
	}

	totalPlayers, err := h.store.CountUsers(ctx)
	if err != nil {
		writeStoreError(w, err, "Users not found")
		return
	}
	onlinePlayers, err := h.store.CountOnlineUsers(ctx)
	if err != nil {
		writeStoreError(w, err, "Users not found")
		return
	}
	activeSessions, err := h.store.CountActiveSessions(ctx)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}

	recentSessions, err := h.store.RecentSessions(ctx, dashboardListLimit)
	if err != nil {
		writeStoreError(w, err, "Session not found")
		return
	}

	topPlayers, err := h.store.Leaderboard(ctx, models.MetricLevel, dashboardListLimit)
	if err != nil {
		writeStoreError(w, err, "Player stats not found")
		return
	}

	now := time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{
		"server_status": serverStatus,
		"player_counts": map[string]int64{
			"total_players":   totalPlayers,
			"online_players":  onlinePlayers,
			"active_sessions": activeSessions,
		},
		"recent_sessions": serialize.GameSessionList(recentSessions, now),
		"top_players":     serialize.PlayerStatsList(topPlayers, serialize.TierPublic),
		"timestamp":       now,
	})
}
