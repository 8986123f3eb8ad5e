package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/swg-infinity/api/internal/auth"
	"github.com/swg-infinity/api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	mux, m := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/users", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create user: got %d, want 201: %s", recorder.Code, recorder.Body.String())
	}

	payload := decodeMap(t, recorder)
	if _, exists := payload["password"]; exists {
		t.Fatalf("password must never appear in responses: %v", payload)
	}
	if _, exists := payload["password_hash"]; exists {
		t.Fatalf("password hash must never appear in responses: %v", payload)
	}

	user, err := m.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	recorder = doRequest(t, mux, http.MethodPost, "/users", map[string]any{"email": "no-name@example.com"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("create without username/password: got %d, want 400", recorder.Code)
	}
	fieldErrors := decodeMap(t, recorder)
	if fieldErrors["username"] == nil || fieldErrors["password"] == nil {
		t.Fatalf("missing field errors: %v", fieldErrors)
	}
}

func TestUserListTiers(t *testing.T) {
	mux, m := newTestAPI()
	seedTestUser(t, m, "alice")

	// Anonymous callers get the public shape
	recorder := doRequest(t, mux, http.MethodGet, "/users", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list users: got %d, want 200", recorder.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if _, exists := rows[0]["email"]; exists {
		t.Fatalf("anonymous list leaked email: %v", rows[0])
	}

	// Staff callers get the full shape
	token, err := auth.GenerateAccessToken(1, "admin", true)
	if err != nil {
		t.Fatalf("generate staff token: %v", err)
	}
	recorder = doAuthedRequest(t, mux, http.MethodGet, "/users", nil, token)
	rows = nil // json.Unmarshal merges into reused maps, keeping stale keys
	if err := json.Unmarshal(recorder.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if _, exists := rows[0]["email"]; !exists {
		t.Fatalf("staff list should include email: %v", rows[0])
	}

	// Non-staff tokens still get the public shape
	token, _ = auth.GenerateAccessToken(1, "player", false)
	recorder = doAuthedRequest(t, mux, http.MethodGet, "/users", nil, token)
	rows = nil // see above: reset before reuse
	if err := json.Unmarshal(recorder.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if _, exists := rows[0]["email"]; exists {
		t.Fatalf("non-staff list leaked email: %v", rows[0])
	}
}

func TestOnlinePlayersEndpoint(t *testing.T) {
	mux, m := newTestAPI()
	ctx := context.Background()

	alice := seedTestUser(t, m, "alice")
	seedTestUser(t, m, "bob")
	m.CreateSession(ctx, models.GameSession{UserID: alice.ID, CharacterName: "Ryo"})

	recorder := doRequest(t, mux, http.MethodGet, "/users/online-players", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("online players: got %d, want 200", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["count"].(float64) != 1 {
		t.Fatalf("online count: got %v, want 1", payload["count"])
	}
	players := payload["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("online list length: got %d, want 1", len(players))
	}
	if players[0].(map[string]any)["username"] != "alice" {
		t.Fatalf("online player: got %v", players[0])
	}
}

func TestUserMutationsRequireAuth(t *testing.T) {
	mux, m := newTestAPI()
	user := seedTestUser(t, m, "alice")

	recorder := doRequest(t, mux, http.MethodDelete, "/users/1", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated delete: got %d, want 401", recorder.Code)
	}

	token, _ := auth.GenerateAccessToken(user.ID, user.Username, true)
	recorder = doAuthedRequest(t, mux, http.MethodPatch, "/users/1", map[string]any{"first_name": "Alice"}, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("authed patch: got %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
	if payload := decodeMap(t, recorder); payload["first_name"] != "Alice" {
		t.Fatalf("patch did not apply: %v", payload)
	}

	recorder = doAuthedRequest(t, mux, http.MethodDelete, "/users/1", nil, token)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("authed delete: got %d, want 204", recorder.Code)
	}

	recorder = doAuthedRequest(t, mux, http.MethodDelete, "/users/1", nil, token)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("deleting missing user: got %d, want 404", recorder.Code)
	}
}
