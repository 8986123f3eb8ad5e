package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/store"
)

func seedLeaderboard(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()

	for _, row := range []struct {
		username string
		level    int
		kills    int
		deaths   int
		xp       int64
	}{
		{"alice", 30, 9, 4, 900},
		{"bob", 10, 10, 0, 100},
		{"cara", 30, 2, 1, 500},
	} {
		user := seedTestUser(t, m, row.username)
		_, err := m.CreatePlayerStats(ctx, models.PlayerStats{
			UserID:           user.ID,
			Level:            row.level,
			PvPKills:         row.kills,
			PvPDeaths:        row.deaths,
			ExperiencePoints: row.xp,
		})
		if err != nil {
			t.Fatalf("seed stats for %s: %v", row.username, err)
		}
	}
}

func TestLeaderboardByMetric(t *testing.T) {
	mux, m := newTestAPI()
	seedLeaderboard(t, m)

	recorder := doRequest(t, mux, http.MethodGet, "/player-stats/leaderboard?metric=level&limit=2", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("leaderboard: got %d, want 200", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["metric"] != "level" {
		t.Fatalf("leaderboard metric echo: got %v", payload["metric"])
	}

	rows := payload["leaderboard"].([]any)
	if len(rows) != 2 {
		t.Fatalf("leaderboard limit: got %d rows, want 2", len(rows))
	}
	// alice and cara tie on level 30; alice was created first
	first := rows[0].(map[string]any)
	second := rows[1].(map[string]any)
	if first["user_username"] != "alice" || second["user_username"] != "cara" {
		t.Fatalf("leaderboard tie-break order: %v, %v", first["user_username"], second["user_username"])
	}

	// Public shape only: no id or total_sessions fields
	if _, exists := first["id"]; exists {
		t.Fatalf("leaderboard rows should use the public shape: %v", first)
	}
	if first["kd_ratio"].(float64) != 2.25 {
		t.Fatalf("leaderboard kd_ratio: got %v, want 2.25", first["kd_ratio"])
	}

	recorder = doRequest(t, mux, http.MethodGet, "/player-stats/leaderboard?metric=pvp_kills", nil)
	payload = decodeMap(t, recorder)
	rows = payload["leaderboard"].([]any)
	if rows[0].(map[string]any)["user_username"] != "bob" {
		t.Fatalf("kills leaderboard should lead with bob")
	}
	// bob has 10 kills and 0 deaths; kd is the kill count
	if rows[0].(map[string]any)["kd_ratio"].(float64) != 10 {
		t.Fatalf("zero-death kd_ratio: got %v, want 10", rows[0].(map[string]any)["kd_ratio"])
	}
}

func TestLeaderboardInvalidInput(t *testing.T) {
	mux, m := newTestAPI()
	seedLeaderboard(t, m)

	recorder := doRequest(t, mux, http.MethodGet, "/player-stats/leaderboard?metric=invalid&limit=10", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid metric: got %d, want 400", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["error"] == nil {
		t.Fatalf("invalid metric should return a structured error: %v", payload)
	}

	recorder = doRequest(t, mux, http.MethodGet, "/player-stats/leaderboard?limit=zero", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit: got %d, want 400", recorder.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	mux, m := newTestAPI()

	recorder := doRequest(t, mux, http.MethodGet, "/player-stats/statistics", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("statistics on empty store: got %d, want 200", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["total_players"].(float64) != 0 || payload["average_level"].(float64) != 0 {
		t.Fatalf("empty statistics should be zero: %v", payload)
	}

	seedLeaderboard(t, m)
	ctx := context.Background()
	alice, _ := m.GetUserByUsername(ctx, "alice")
	m.CreateSession(ctx, models.GameSession{UserID: alice.ID, CharacterName: "Ryo"})

	recorder = doRequest(t, mux, http.MethodGet, "/player-stats/statistics", nil)
	payload = decodeMap(t, recorder)
	if payload["total_players"].(float64) != 3 {
		t.Fatalf("total_players: got %v, want 3", payload["total_players"])
	}
	// Levels 30, 10, 30 average to 23.3 after rounding
	if payload["average_level"].(float64) != 23.3 {
		t.Fatalf("average_level: got %v, want 23.3", payload["average_level"])
	}
	if payload["total_sessions"].(float64) != 1 || payload["active_sessions"].(float64) != 1 {
		t.Fatalf("session counts wrong: %v", payload)
	}
	if payload["online_players"].(float64) != 1 {
		t.Fatalf("online_players: got %v, want 1", payload["online_players"])
	}
}

func TestPlayerStatsCreateValidation(t *testing.T) {
	mux, m := newTestAPI()
	user := seedTestUser(t, m, "alice")

	recorder := doRequest(t, mux, http.MethodPost, "/player-stats", map[string]any{
		"level":     -3,
		"pvp_kills": -1,
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid stats create: got %d, want 400", recorder.Code)
	}
	fieldErrors := decodeMap(t, recorder)
	for _, field := range []string{"user", "level", "pvp_kills"} {
		if fieldErrors[field] == nil {
			t.Fatalf("missing field error for %s: %v", field, fieldErrors)
		}
	}

	recorder = doRequest(t, mux, http.MethodPost, "/player-stats", map[string]any{
		"user":  user.ID,
		"level": 12,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("valid stats create: got %d, want 201: %s", recorder.Code, recorder.Body.String())
	}

	// One stats row per user
	recorder = doRequest(t, mux, http.MethodPost, "/player-stats", map[string]any{
		"user": user.ID,
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate stats row: got %d, want 409", recorder.Code)
	}
}

func TestPlayerStatsListTier(t *testing.T) {
	mux, m := newTestAPI()
	seedLeaderboard(t, m)

	recorder := doRequest(t, mux, http.MethodGet, "/player-stats", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list stats: got %d, want 200", recorder.Code)
	}

	var rows []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode stats list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("stats list length: got %d, want 3", len(rows))
	}
	// Anonymous callers get the public shape
	if _, exists := rows[0]["total_playtime_hours"]; exists {
		t.Fatalf("anonymous list should use public shape: %v", rows[0])
	}
}
