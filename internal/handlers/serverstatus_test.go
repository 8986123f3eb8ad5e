package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/swg-infinity/api/internal/models"
)

func TestCurrentStatusEmptyStore(t *testing.T) {
	mux, _ := newTestAPI()
	recorder := doRequest(t, mux, http.MethodGet, "/server-status/current-status", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("current-status on empty store: got %d, want 404", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["error"] == nil {
		t.Fatalf("expected structured error, got %v", payload)
	}
}

func TestUpdateStatusCreatesThenUpdates(t *testing.T) {
	mux, _ := newTestAPI()

	// First upsert creates a row
	recorder := doRequest(t, mux, http.MethodPost, "/server-status/update-status", map[string]any{
		"status":       models.StatusOnline,
		"player_count": 250,
		"max_players":  1000,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("first upsert: got %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeMap(t, recorder)
	if payload["status"] != models.StatusOnline {
		t.Fatalf("upsert status: got %v", payload["status"])
	}
	if payload["player_percentage"].(float64) != 25.0 {
		t.Fatalf("upsert player_percentage: got %v, want 25.0", payload["player_percentage"])
	}
	firstID := payload["id"].(float64)

	// Current status now resolves to that row
	recorder = doRequest(t, mux, http.MethodGet, "/server-status/current-status", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("current-status after upsert: got %d, want 200", recorder.Code)
	}

	// Second upsert patches the same row instead of creating another
	recorder = doRequest(t, mux, http.MethodPost, "/server-status/update-status", map[string]any{
		"player_count": 300,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("second upsert: got %d, want 200", recorder.Code)
	}
	payload = decodeMap(t, recorder)
	if payload["id"].(float64) != firstID {
		t.Fatalf("second upsert created a new row: id %v, want %v", payload["id"], firstID)
	}
	if payload["player_count"].(float64) != 300 {
		t.Fatalf("second upsert player_count: got %v, want 300", payload["player_count"])
	}
	// Untouched fields survive the partial update
	if payload["status"] != models.StatusOnline {
		t.Fatalf("partial upsert dropped status: got %v", payload["status"])
	}

	recorder = doRequest(t, mux, http.MethodGet, "/server-status", nil)
	var list []any
	if err := json.Unmarshal(recorder.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single status row, got %d", len(list))
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/server-status/update-status", map[string]any{
		"status":       "exploded",
		"player_count": -5,
		"cpu_usage":    150.0,
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid upsert: got %d, want 400", recorder.Code)
	}

	fieldErrors := decodeMap(t, recorder)
	for _, field := range []string{"status", "player_count", "cpu_usage"} {
		if fieldErrors[field] == nil {
			t.Fatalf("missing field error for %s: %v", field, fieldErrors)
		}
	}

	// Nothing was persisted
	recorder = doRequest(t, mux, http.MethodGet, "/server-status/current-status", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("failed upsert must not persist: got %d, want 404", recorder.Code)
	}
}

func TestServerStatusCRUD(t *testing.T) {
	mux, _ := newTestAPI()

	recorder := doRequest(t, mux, http.MethodPost, "/server-status", map[string]any{
		"server_name": "SWG Infinity",
		"status":      models.StatusStarting,
		"uptime":      7200,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["uptime_hours"].(float64) != 2.0 {
		t.Fatalf("create uptime_hours: got %v, want 2.0", payload["uptime_hours"])
	}
	id := int(payload["id"].(float64))

	recorder = doRequest(t, mux, http.MethodPatch, "/server-status/"+strconv.Itoa(id), map[string]any{
		"status": models.StatusOnline,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("patch status: got %d, want 200", recorder.Code)
	}
	if payload := decodeMap(t, recorder); payload["status"] != models.StatusOnline {
		t.Fatalf("patch did not apply: %v", payload["status"])
	}

	recorder = doRequest(t, mux, http.MethodDelete, "/server-status/"+strconv.Itoa(id), nil)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status: got %d, want 204", recorder.Code)
	}

	recorder = doRequest(t, mux, http.MethodGet, "/server-status/"+strconv.Itoa(id), nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("retrieve deleted status: got %d, want 404", recorder.Code)
	}
}
