package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestServerConfigCreateValidation(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/server-config", map[string]any{
		"description": "no name or value",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("create without required fields: got %d, want 400", recorder.Code)
	}
	fieldErrors := decodeMap(t, recorder)
	if fieldErrors["setting_name"] == nil || fieldErrors["setting_value"] == nil {
		t.Fatalf("missing field errors: %v", fieldErrors)
	}

	recorder = doRequest(t, mux, http.MethodPost, "/server-config", map[string]any{
		"setting_name":  "max_group_size",
		"setting_value": "8",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create config: got %d, want 201: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeMap(t, recorder)
	if payload["is_active"] != true {
		t.Fatalf("new configs default to active: %v", payload)
	}

	// setting_name is unique
	recorder = doRequest(t, mux, http.MethodPost, "/server-config", map[string]any{
		"setting_name":  "max_group_size",
		"setting_value": "16",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate setting_name: got %d, want 409", recorder.Code)
	}
}

func TestToggleActiveAndActiveConfigs(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/server-config", map[string]any{
		"setting_name":  "xp_multiplier",
		"setting_value": "2.0",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create config: got %d, want 201", recorder.Code)
	}
	doRequest(t, mux, http.MethodPost, "/server-config", map[string]any{
		"setting_name":  "pvp_enabled",
		"setting_value": "true",
	})

	recorder = doRequest(t, mux, http.MethodPost, "/server-config/1/toggle-active", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("toggle: got %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
	if payload := decodeMap(t, recorder); payload["is_active"] != false {
		t.Fatalf("toggle should deactivate: %v", payload)
	}

	recorder = doRequest(t, mux, http.MethodGet, "/server-config/active-configs", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("active configs: got %d, want 200", recorder.Code)
	}
	var active []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &active); err != nil {
		t.Fatalf("decode active configs: %v", err)
	}
	if len(active) != 1 || active[0]["setting_name"] != "pvp_enabled" {
		t.Fatalf("active configs: got %v, want only pvp_enabled", active)
	}

	// Toggling back restores it
	recorder = doRequest(t, mux, http.MethodPost, "/server-config/1/toggle-active", nil)
	if payload := decodeMap(t, recorder); payload["is_active"] != true {
		t.Fatalf("toggle should reactivate: %v", payload)
	}

	recorder = doRequest(t, mux, http.MethodPost, "/server-config/999/toggle-active", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("toggle missing config: got %d, want 404", recorder.Code)
	}
}
