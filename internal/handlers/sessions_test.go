package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/swg-infinity/api/internal/models"
)

func TestUserSessionsRequiresUserID(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodGet, "/game-sessions/user-sessions", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing user_id: got %d, want 400", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["error"] != "user_id parameter required" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}

	recorder = doRequest(t, mux, http.MethodGet, "/game-sessions/user-sessions?user_id=abc", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("non-integer user_id: got %d, want 400", recorder.Code)
	}
}

func TestUserSessionsFiltersByUser(t *testing.T) {
	mux, m := newTestAPI()
	ctx := context.Background()

	alice := seedTestUser(t, m, "alice")
	bob := seedTestUser(t, m, "bob")
	m.CreateSession(ctx, models.GameSession{UserID: alice.ID, CharacterName: "Ryo"})
	m.CreateSession(ctx, models.GameSession{UserID: bob.ID, CharacterName: "Kira"})

	recorder := doRequest(t, mux, http.MethodGet, fmt.Sprintf("/game-sessions/user-sessions?user_id=%d", alice.ID), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("user sessions: got %d, want 200", recorder.Code)
	}

	var sessions []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session for alice, got %d", len(sessions))
	}
	if sessions[0]["user_username"] != "alice" {
		t.Fatalf("session username: got %v", sessions[0]["user_username"])
	}
}

func TestActiveSessionsExcludesEnded(t *testing.T) {
	mux, m := newTestAPI()
	ctx := context.Background()

	alice := seedTestUser(t, m, "alice")
	first, _ := m.CreateSession(ctx, models.GameSession{UserID: alice.ID, CharacterName: "Ryo"})
	m.CreateSession(ctx, models.GameSession{UserID: alice.ID, CharacterName: "Kira"})
	m.EndSession(ctx, first.ID, time.Now().UTC())

	recorder := doRequest(t, mux, http.MethodGet, "/game-sessions/active-sessions", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("active sessions: got %d, want 200", recorder.Code)
	}

	payload := decodeMap(t, recorder)
	if payload["count"].(float64) != 1 {
		t.Fatalf("active count: got %v, want 1", payload["count"])
	}
	sessions := payload["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("active list length: got %d, want 1", len(sessions))
	}
	session := sessions[0].(map[string]any)
	if session["logout_time"] != nil {
		t.Fatalf("active session has logout_time: %v", session["logout_time"])
	}
	if session["is_currently_active"] != true {
		t.Fatalf("active session not flagged as currently active")
	}
}

func TestCreateSessionValidation(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/game-sessions", map[string]any{})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("empty session create: got %d, want 400", recorder.Code)
	}
	fieldErrors := decodeMap(t, recorder)
	if fieldErrors["user"] == nil || fieldErrors["character_name"] == nil {
		t.Fatalf("missing field errors: %v", fieldErrors)
	}
}

func TestEndSessionLifecycle(t *testing.T) {
	mux, m := newTestAPI()
	ctx := context.Background()

	alice := seedTestUser(t, m, "alice")
	recorder := doRequest(t, mux, http.MethodPost, "/game-sessions", map[string]any{
		"user":           alice.ID,
		"character_name": "Ryo",
		"planet":         "tatooine",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create session: got %d, want 201: %s", recorder.Code, recorder.Body.String())
	}
	created := decodeMap(t, recorder)
	sessionID := int(created["id"].(float64))

	owner, _ := m.GetUser(ctx, alice.ID)
	if !owner.IsOnline {
		t.Fatalf("owner should be online after session create")
	}

	recorder = doRequest(t, mux, http.MethodPost, fmt.Sprintf("/game-sessions/%d/end-session", sessionID), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("end session: got %d, want 200", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["is_active"] != false {
		t.Fatalf("ended session is_active: got %v", payload["is_active"])
	}
	if payload["logout_time"] == nil {
		t.Fatalf("ended session missing logout_time")
	}
	firstLogout := payload["logout_time"]

	owner, _ = m.GetUser(ctx, alice.ID)
	if owner.IsOnline {
		t.Fatalf("owner should be offline after session end")
	}

	// Second end is an idempotent no-op
	recorder = doRequest(t, mux, http.MethodPost, fmt.Sprintf("/game-sessions/%d/end-session", sessionID), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("second end: got %d, want 200", recorder.Code)
	}
	payload = decodeMap(t, recorder)
	if payload["logout_time"] != firstLogout {
		t.Fatalf("second end changed logout_time: %v -> %v", firstLogout, payload["logout_time"])
	}

	recorder = doRequest(t, mux, http.MethodPost, "/game-sessions/999/end-session", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("ending missing session: got %d, want 404", recorder.Code)
	}
}
