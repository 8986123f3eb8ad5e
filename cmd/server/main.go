package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/swg-infinity/api/internal/database"
	"github.com/swg-infinity/api/internal/handlers"
	"github.com/swg-infinity/api/internal/middleware"
	"github.com/swg-infinity/api/internal/redis"
	"github.com/swg-infinity/api/internal/store"
)

func main() {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("[API] Loaded configuration from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize database connection
	log.Println("[API] Initializing database connection...")
	db, err := database.NewConnection(database.LoadConfigFromEnv())
	if err != nil {
		log.Fatalf("[API] Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("[API] Failed to initialize schema: %v", err)
	}
	log.Println("[API] Database connected successfully")

	// Redis is optional; presence tracking degrades to a no-op without it
	var presence *redis.Presence
	if redisClient, err := redis.NewClient(redis.LoadConfigFromEnv()); err != nil {
		log.Printf("[API] Redis unavailable, presence mirror disabled: %v", err)
	} else {
		defer redisClient.Close()
		presence = redis.NewPresence(redisClient)
	}

	s := store.NewPostgres(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(s)
	userHandler := handlers.NewUserHandler(s)
	statusHandler := handlers.NewServerStatusHandler(s)
	configHandler := handlers.NewServerConfigHandler(s)
	sessionHandler := handlers.NewGameSessionHandler(s, presence)
	statsHandler := handlers.NewPlayerStatsHandler(s)
	dashboardHandler := handlers.NewDashboardHandler(s)

	// Setup HTTP routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handlers.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)

	// User routes
	mux.HandleFunc("GET /users", middleware.OptionalAuth(userHandler.List))
	mux.HandleFunc("POST /users", userHandler.Create)
	mux.HandleFunc("GET /users/online-players", userHandler.OnlinePlayers)
	mux.HandleFunc("GET /users/{id}", middleware.OptionalAuth(userHandler.Retrieve))
	mux.HandleFunc("PUT /users/{id}", middleware.RequireAuth(userHandler.Update))
	mux.HandleFunc("PATCH /users/{id}", middleware.RequireAuth(userHandler.PartialUpdate))
	mux.HandleFunc("DELETE /users/{id}", middleware.RequireAuth(userHandler.Delete))

	// Server status routes
	mux.HandleFunc("GET /server-status", statusHandler.List)
	mux.HandleFunc("POST /server-status", statusHandler.Create)
	mux.HandleFunc("GET /server-status/current-status", statusHandler.CurrentStatus)
	mux.HandleFunc("POST /server-status/update-status", statusHandler.UpdateStatus)
	mux.HandleFunc("GET /server-status/{id}", statusHandler.Retrieve)
	mux.HandleFunc("PUT /server-status/{id}", statusHandler.Update)
	mux.HandleFunc("PATCH /server-status/{id}", statusHandler.PartialUpdate)
	mux.HandleFunc("DELETE /server-status/{id}", statusHandler.Delete)

	// Server configuration routes
	mux.HandleFunc("GET /server-config", configHandler.List)
	mux.HandleFunc("POST /server-config", configHandler.Create)
	mux.HandleFunc("GET /server-config/active-configs", configHandler.ActiveConfigs)
	mux.HandleFunc("GET /server-config/{id}", configHandler.Retrieve)
	mux.HandleFunc("PUT /server-config/{id}", configHandler.Update)
	mux.HandleFunc("PATCH /server-config/{id}", configHandler.PartialUpdate)
	mux.HandleFunc("DELETE /server-config/{id}", configHandler.Delete)
	mux.HandleFunc("POST /server-config/{id}/toggle-active", configHandler.ToggleActive)

	// Game session routes
	mux.HandleFunc("GET /game-sessions", sessionHandler.List)
	mux.HandleFunc("POST /game-sessions", sessionHandler.Create)
	mux.HandleFunc("GET /game-sessions/active-sessions", sessionHandler.ActiveSessions)
	mux.HandleFunc("GET /game-sessions/user-sessions", sessionHandler.UserSessions)
	mux.HandleFunc("GET /game-sessions/{id}", sessionHandler.Retrieve)
	mux.HandleFunc("PUT /game-sessions/{id}", sessionHandler.Update)
	mux.HandleFunc("PATCH /game-sessions/{id}", sessionHandler.PartialUpdate)
	mux.HandleFunc("DELETE /game-sessions/{id}", sessionHandler.Delete)
	mux.HandleFunc("POST /game-sessions/{id}/end-session", sessionHandler.EndSession)

	// Player stats routes
	mux.HandleFunc("GET /player-stats", middleware.OptionalAuth(statsHandler.List))
	mux.HandleFunc("POST /player-stats", statsHandler.Create)
	mux.HandleFunc("GET /player-stats/leaderboard", statsHandler.Leaderboard)
	mux.HandleFunc("GET /player-stats/statistics", statsHandler.Statistics)
	mux.HandleFunc("GET /player-stats/{id}", middleware.OptionalAuth(statsHandler.Retrieve))
	mux.HandleFunc("PUT /player-stats/{id}", statsHandler.Update)
	mux.HandleFunc("PATCH /player-stats/{id}", statsHandler.PartialUpdate)
	mux.HandleFunc("DELETE /player-stats/{id}", statsHandler.Delete)

	// Dashboard
	mux.HandleFunc("GET /dashboard", dashboardHandler.Get)

	// CORS middleware
	handler := corsMiddleware(mux)

	// Start server
	log.Printf("[API] Starting server on port %s...", port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[API] Server failed: %v", err)
	}
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
