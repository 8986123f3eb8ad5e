package models

import "time"

// User represents a user account
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsOnline     bool       `json:"is_online"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
}

// ServerStatus represents a server health snapshot
type ServerStatus struct {
	ID              int       `json:"id"`
	ServerName      string    `json:"server_name"`
	Status          string    `json:"status"`
	PlayerCount     int       `json:"player_count"`
	MaxPlayers      int       `json:"max_players"`
	UptimeSeconds   int64     `json:"uptime"`
	LastRestart     time.Time `json:"last_restart"`
	CPUUsage        float64   `json:"cpu_usage"`
	MemoryUsage     float64   `json:"memory_usage"`
	MessageOfTheDay string    `json:"message_of_the_day"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServerConfiguration represents a named server setting
type ServerConfiguration struct {
	ID           int       `json:"id"`
	SettingName  string    `json:"setting_name"`
	SettingValue string    `json:"setting_value"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GameSession represents one character's connected play period
type GameSession struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user"`
	Username      string     `json:"user_username"`
	CharacterName string     `json:"character_name"`
	LoginTime     time.Time  `json:"login_time"`
	LogoutTime    *time.Time `json:"logout_time"`
	IsActive      bool       `json:"is_active"`
	IPAddress     *string    `json:"ip_address"`
	LocationX     *float64   `json:"location_x"`
	LocationY     *float64   `json:"location_y"`
	LocationZ     *float64   `json:"location_z"`
	Planet        *string    `json:"planet"`
}

// SessionDuration returns the elapsed play time, using now for sessions
// that have not logged out yet.
func (s *GameSession) SessionDuration(now time.Time) time.Duration {
	end := now
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	return end.Sub(s.LoginTime)
}

// PlayerStats represents lifetime statistics for one user
type PlayerStats struct {
	ID                   int       `json:"id"`
	UserID               int       `json:"user"`
	Username             string    `json:"user_username"`
	TotalSessions        int       `json:"total_sessions"`
	TotalPlaytimeSeconds int64     `json:"total_playtime"`
	LastSeen             time.Time `json:"last_seen"`
	FavoritePlanet       *string   `json:"favorite_planet"`
	CreditsEarned        int64     `json:"credits_earned"`
	ExperiencePoints     int64     `json:"experience_points"`
	Level                int       `json:"level"`
	GuildName            *string   `json:"guild_name"`
	PvPKills             int       `json:"pvp_kills"`
	PvPDeaths            int       `json:"pvp_deaths"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
