package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swg-infinity/api/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserContextKey is the key for storing user claims in request context
	UserContextKey contextKey = "user"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequireAuth is a middleware that validates JWT tokens
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, errMsg := claimsFromHeader(r)
		if claims == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg})
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), UserContextKey, claims)))
	}
}

// OptionalAuth attaches claims when a valid token is present but lets
// anonymous requests through. Handlers use the claims to pick the
// response tier.
func OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, _ := claimsFromHeader(r); claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
		}
		next.ServeHTTP(w, r)
	}
}

func claimsFromHeader(r *http.Request) (*auth.CustomClaims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Missing authorization header"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "Invalid authorization header format. Use: Bearer <token>"
	}

	claims, err := auth.ValidateToken(parts[1])
	if err != nil {
		return nil, "Invalid or expired token"
	}
	return claims, ""
}

// GetUserClaims extracts user claims from request context
func GetUserClaims(r *http.Request) (*auth.CustomClaims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*auth.CustomClaims)
	return claims, ok
}

// IsStaff reports whether the request carries a staff token
func IsStaff(r *http.Request) bool {
	claims, ok := GetUserClaims(r)
	return ok && claims.IsStaff
}
