package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/store"
)

type ServerConfigHandler struct {
	store store.Store
}

func NewServerConfigHandler(s store.Store) *ServerConfigHandler {
	return &ServerConfigHandler{store: s}
}

type serverConfigInput struct {
	SettingName  *string `json:"setting_name"`
	SettingValue *string `json:"setting_value"`
	Description  *string `json:"description"`
	IsActive     *bool   `json:"is_active"`
}

func (in *serverConfigInput) validate(partial bool) ValidationErrors {
	fieldErrors := ValidationErrors{}
	if in.SettingName != nil && strings.TrimSpace(*in.SettingName) == "" {
		fieldErrors["setting_name"] = "This field may not be blank"
	}
	if !partial {
		if in.SettingName == nil {
			fieldErrors["setting_name"] = "This field is required"
		}
		if in.SettingValue == nil {
			fieldErrors["setting_value"] = "This field is required"
		}
	}
	return fieldErrors
}

func (in *serverConfigInput) apply(c *models.ServerConfiguration) {
	if in.SettingName != nil {
		c.SettingName = strings.TrimSpace(*in.SettingName)
	}
	if in.SettingValue != nil {
		c.SettingValue = *in.SettingValue
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

// List returns all configurations ordered by setting name
func (h *ServerConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListConfigs(r.Context())
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// Retrieve returns one configuration
func (h *ServerConfigHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration id")
		return
	}

	config, err := h.store.GetConfig(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// Create inserts a new configuration
func (h *ServerConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in serverConfigInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(false); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	config := models.ServerConfiguration{IsActive: true}
	in.apply(&config)

	created, err := h.store.CreateConfig(r.Context(), config)
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces a configuration's fields
func (h *ServerConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate applies only the fields present in the payload
func (h *ServerConfigHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *ServerConfigHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration id")
		return
	}

	var in serverConfigInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := in.validate(partial); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	config, err := h.store.GetConfig(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}

	in.apply(&config)
	updated, err := h.store.UpdateConfig(r.Context(), config)
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a configuration
func (h *ServerConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration id")
		return
	}

	if err := h.store.DeleteConfig(r.Context(), id); err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveConfigs returns only active configurations
func (h *ServerConfigHandler) ActiveConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ActiveConfigs(r.Context())
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// ToggleActive flips a configuration's is_active flag
func (h *ServerConfigHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration id")
		return
	}

	config, err := h.store.ToggleConfigActive(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Configuration not found")
		return
	}

	log.Printf("[API] Configuration %q toggled to is_active=%t", config.SettingName, config.IsActive)
	writeJSON(w, http.StatusOK, config)
}
