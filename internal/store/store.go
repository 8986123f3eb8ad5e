package store

import (
	"context"
	"errors"
	"time"

	"github.com/swg-infinity/api/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate")
)

// ServerStatistics is the server-wide aggregate view
type ServerStatistics struct {
	TotalPlayers   int64   `json:"total_players"`
	AverageLevel   float64 `json:"average_level"`
	TotalSessions  int64   `json:"total_sessions"`
	ActiveSessions int64   `json:"active_sessions"`
	OnlinePlayers  int64   `json:"online_players"`
}

// Store is the persistence interface for all entities. Postgres is the
// production implementation; Memory backs handler tests.
type Store interface {
	// Users
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	CountUsers(ctx context.Context) (int64, error)
	CountOnlineUsers(ctx context.Context) (int64, error)
	// OnlinePlayers returns the owners of currently active sessions.
	OnlinePlayers(ctx context.Context) ([]models.User, error)
	TouchLastLogin(ctx context.Context, id int, when time.Time) error

	// Server status
	ListServerStatus(ctx context.Context) ([]models.ServerStatus, error)
	GetServerStatus(ctx context.Context, id int) (models.ServerStatus, error)
	CreateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error)
	UpdateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error)
	DeleteServerStatus(ctx context.Context, id int) error
	// LatestServerStatus returns the row with the greatest updated_at.
	LatestServerStatus(ctx context.Context) (models.ServerStatus, error)

	// Server configuration
	ListConfigs(ctx context.Context) ([]models.ServerConfiguration, error)
	GetConfig(ctx context.Context, id int) (models.ServerConfiguration, error)
	CreateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error)
	UpdateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error)
	DeleteConfig(ctx context.Context, id int) error
	ActiveConfigs(ctx context.Context) ([]models.ServerConfiguration, error)
	ToggleConfigActive(ctx context.Context, id int) (models.ServerConfiguration, error)

	// Game sessions
	ListSessions(ctx context.Context) ([]models.GameSession, error)
	GetSession(ctx context.Context, id int) (models.GameSession, error)
	// CreateSession inserts the session and marks the owning user online
	// in the same transaction.
	CreateSession(ctx context.Context, s models.GameSession) (models.GameSession, error)
	UpdateSession(ctx context.Context, s models.GameSession) (models.GameSession, error)
	DeleteSession(ctx context.Context, id int) error
	ActiveSessions(ctx context.Context) ([]models.GameSession, error)
	SessionsForUser(ctx context.Context, userID int) ([]models.GameSession, error)
	RecentSessions(ctx context.Context, limit int) ([]models.GameSession, error)
	// EndSession sets logout_time/is_active and marks the owning user
	// offline in the same transaction. Ending an already-ended session is
	// a no-op that returns the row unchanged.
	EndSession(ctx context.Context, id int, now time.Time) (models.GameSession, error)
	CountSessions(ctx context.Context) (int64, error)
	CountActiveSessions(ctx context.Context) (int64, error)

	// Player stats
	ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error)
	GetPlayerStats(ctx context.Context, id int) (models.PlayerStats, error)
	CreatePlayerStats(ctx context.Context, p models.PlayerStats) (models.PlayerStats, error)
	UpdatePlayerStats(ctx context.Context, p models.PlayerStats) (models.PlayerStats, error)
	DeletePlayerStats(ctx context.Context, id int) error
	// Leaderboard returns the top rows ordered by the metric descending,
	// id ascending on ties. The metric must already be validated.
	Leaderboard(ctx context.Context, metric string, limit int) ([]models.PlayerStats, error)
	Statistics(ctx context.Context) (ServerStatistics, error)
}
