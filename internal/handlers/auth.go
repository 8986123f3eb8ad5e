package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/swg-infinity/api/internal/auth"
	"github.com/swg-infinity/api/internal/models"
	"github.com/swg-infinity/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	store store.Store
}

func NewAuthHandler(s store.Store) *AuthHandler {
	return &AuthHandler{store: s}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents the refresh token request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		// Same response for unknown user and bad password
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Account is disabled")
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.IsStaff)
	if err != nil {
		log.Printf("[Auth] Failed to generate access token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		log.Printf("[Auth] Failed to generate refresh token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now().UTC()
	if err := h.store.TouchLastLogin(r.Context(), user.ID, now); err != nil {
		log.Printf("[Auth] Failed to update last login for user %d: %v", user.ID, err)
	}
	user.LastLogin = &now

	log.Printf("[Auth] User logged in: %s (ID: %d)", user.Username, user.ID)
	writeJSON(w, http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

// RefreshToken issues a new access token from a valid refresh token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claims, err := auth.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	userID, err := strconv.Atoi(claims.ID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token claims")
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.IsStaff)
	if err != nil {
		log.Printf("[Auth] Failed to generate access token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}
