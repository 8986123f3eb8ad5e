package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/serialize"
	"github.com/swg-infinity/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	store store.Store
}

func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// userInput is the write shape for users; password is write-only
type userInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
	IsActive  *bool   `json:"is_active"`
	IsStaff   *bool   `json:"is_staff"`
}

func (in *userInput) apply(u *models.User) error {
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsStaff != nil {
		u.IsStaff = *in.IsStaff
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hash)
	}
	return nil
}

// List returns all users at the caller's tier
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Users not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.UserList(users, tierFor(r)))
}

// Retrieve returns one user at the caller's tier
func (h *UserHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, serialize.UserResponse(user, tierFor(r)))
}

// Create registers a new user with a write-only password
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fieldErrors := ValidationErrors{}
	if in.Username == nil || strings.TrimSpace(*in.Username) == "" {
		fieldErrors["username"] = "This field is required"
	}
	if in.Password == nil || *in.Password == "" {
		fieldErrors["password"] = "This field is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	user := models.User{IsActive: true}
	if err := in.apply(&user); err != nil {
		log.Printf("[API] Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	log.Printf("[API] User created: %s (ID: %d)", created.Username, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces a user's editable fields
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate applies only the fields present in the payload
func (h *UserHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !partial {
		if in.Username == nil || strings.TrimSpace(*in.Username) == "" {
			writeJSON(w, http.StatusBadRequest, ValidationErrors{"username": "This field is required"})
			return
		}
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	if err := in.apply(&user); err != nil {
		log.Printf("[API] Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a user
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OnlinePlayers lists the owners of currently active sessions
func (h *UserHandler) OnlinePlayers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.OnlinePlayers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Users not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(users),
		"players": serialize.UserList(users, serialize.TierPublic),
	})
}
