package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func seedCredentialedUser(t *testing.T, m *store.Memory, username, password string, active bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := m.CreateUser(context.Background(), models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     active,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func TestLoginFlow(t *testing.T) {
	mux, m := newTestAPI()
	seedCredentialedUser(t, m, "alice", "correct horse", true)

	recorder := doRequest(t, mux, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice",
		"password": "correct horse",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("login: got %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeMap(t, recorder)
	if payload["access_token"] == nil || payload["refresh_token"] == nil {
		t.Fatalf("login payload missing tokens: %v", payload)
	}
	user := payload["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("login payload user: %v", user)
	}
	if user["last_login"] == nil {
		t.Fatalf("login should record last_login: %v", user)
	}
	if _, exists := user["password_hash"]; exists {
		t.Fatalf("login leaked password hash: %v", user)
	}

	stored, err := m.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.LastLogin == nil {
		t.Fatalf("last login not persisted")
	}

	// The refresh token from login mints a fresh access token
	refreshToken := payload["refresh_token"].(string)
	recorder = doRequest(t, mux, http.MethodPost, "/auth/refresh", map[string]any{
		"refresh_token": refreshToken,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("refresh: got %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
	if refreshed := decodeMap(t, recorder); refreshed["access_token"] == nil {
		t.Fatalf("refresh payload missing access token: %v", refreshed)
	}
}

func TestLoginRejections(t *testing.T) {
	mux, m := newTestAPI()
	seedCredentialedUser(t, m, "alice", "correct horse", true)
	seedCredentialedUser(t, m, "banned", "correct horse", false)

	cases := []struct {
		name     string
		body     map[string]any
		wantCode int
		wantMsg  string
	}{
		{"missing fields", map[string]any{"username": "alice"}, http.StatusBadRequest, "Username and password are required"},
		{"unknown user", map[string]any{"username": "ghost", "password": "whatever"}, http.StatusUnauthorized, "Invalid username or password"},
		{"wrong password", map[string]any{"username": "alice", "password": "wrong"}, http.StatusUnauthorized, "Invalid username or password"},
		{"disabled account", map[string]any{"username": "banned", "password": "correct horse"}, http.StatusForbidden, "Account is disabled"},
	}
	for _, tc := range cases {
		recorder := doRequest(t, mux, http.MethodPost, "/auth/login", tc.body)
		if recorder.Code != tc.wantCode {
			t.Fatalf("%s: got %d, want %d", tc.name, recorder.Code, tc.wantCode)
		}
		if payload := decodeMap(t, recorder); payload["error"] != tc.wantMsg {
			t.Fatalf("%s: got error %q, want %q", tc.name, payload["error"], tc.wantMsg)
		}
	}

	recorder := doRequest(t, mux, http.MethodPost, "/auth/refresh", map[string]any{
		"refresh_token": "not-a-token",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("bogus refresh token: got %d, want 401", recorder.Code)
	}
}
