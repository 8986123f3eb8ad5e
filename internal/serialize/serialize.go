// Package serialize maps stored rows to response payloads, computing the
// derived fields (ratios, percentages, durations) the API surfaces.
// Everything here is pure; the caller picks the visibility tier.
package serialize

import (
	"math"
	"time"

	"github.com/swg-infinity/api/internal/models"
)

// Tier selects the response shape for entities with a restricted public view
type Tier int

const (
	// TierPublic is the safe field subset for unprivileged callers
	TierPublic Tier = iota
	// TierFull exposes all fields, for staff callers
	TierFull
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HoursFromSeconds converts a duration in seconds to hours, rounded to 2 decimals
func HoursFromSeconds(seconds int64) float64 {
	if seconds <= 0 {
		return 0.0
	}
	return round2(float64(seconds) / 3600)
}

// MinutesFromDuration converts a duration to minutes, rounded to 1 decimal
func MinutesFromDuration(d time.Duration) float64 {
	return round1(d.Seconds() / 60)
}

// PlayerPercentage returns the player count as a percentage of capacity,
// rounded to 1 decimal. 0.0 when capacity is not positive.
func PlayerPercentage(playerCount, maxPlayers int) float64 {
	if maxPlayers <= 0 {
		return 0.0
	}
	return round1(float64(playerCount) / float64(maxPlayers) * 100)
}

// KDRatio returns kills divided by deaths rounded to 2 decimals, or the
// kill count itself when deaths is zero.
func KDRatio(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return round2(float64(kills) / float64(deaths))
}

// ServerStatusPayload is the response shape for a server status row
type ServerStatusPayload struct {
	models.ServerStatus
	UptimeHours      float64 `json:"uptime_hours"`
	PlayerPercentage float64 `json:"player_percentage"`
}

// ServerStatusResponse builds the response payload for a status row
func ServerStatusResponse(s models.ServerStatus) ServerStatusPayload {
	return ServerStatusPayload{
		ServerStatus:     s,
		UptimeHours:      HoursFromSeconds(s.UptimeSeconds),
		PlayerPercentage: PlayerPercentage(s.PlayerCount, s.MaxPlayers),
	}
}

// GameSessionPayload is the response shape for a game session row
type GameSessionPayload struct {
	models.GameSession
	SessionDurationMinutes float64 `json:"session_duration_minutes"`
	IsCurrentlyActive      bool    `json:"is_currently_active"`
}

// GameSessionResponse builds the response payload for a session row; now
// bounds the duration of sessions that have not logged out.
func GameSessionResponse(s models.GameSession, now time.Time) GameSessionPayload {
	return GameSessionPayload{
		GameSession:            s,
		SessionDurationMinutes: MinutesFromDuration(s.SessionDuration(now)),
		IsCurrentlyActive:      s.IsActive && s.LogoutTime == nil,
	}
}

// GameSessionList builds payloads for a list of sessions
func GameSessionList(sessions []models.GameSession, now time.Time) []GameSessionPayload {
	payloads := make([]GameSessionPayload, 0, len(sessions))
	for _, s := range sessions {
		payloads = append(payloads, GameSessionResponse(s, now))
	}
	return payloads
}

// UserPublicPayload is the safe subset of user fields
type UserPublicPayload struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

// UserResponse builds the response payload for a user at the given tier
func UserResponse(u models.User, tier Tier) any {
	if tier == TierFull {
		return u
	}
	return UserPublicPayload{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.DateJoined,
	}
}

// UserList builds payloads for a list of users at the given tier
func UserList(users []models.User, tier Tier) []any {
	payloads := make([]any, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, UserResponse(u, tier))
	}
	return payloads
}

// PlayerStatsFullPayload is the full response shape for a player stats row
type PlayerStatsFullPayload struct {
	models.PlayerStats
	TotalPlaytimeHours float64 `json:"total_playtime_hours"`
	KDRatio            float64 `json:"kd_ratio"`
}

// PlayerStatsPublicPayload is the public leaderboard shape
type PlayerStatsPublicPayload struct {
	Username         string  `json:"user_username"`
	Level            int     `json:"level"`
	CreditsEarned    int64   `json:"credits_earned"`
	ExperiencePoints int64   `json:"experience_points"`
	GuildName        *string `json:"guild_name"`
	PvPKills         int     `json:"pvp_kills"`
	PvPDeaths        int     `json:"pvp_deaths"`
	KDRatio          float64 `json:"kd_ratio"`
}

// PlayerStatsResponse builds the response payload for a stats row at the given tier
func PlayerStatsResponse(s models.PlayerStats, tier Tier) any {
	if tier == TierFull {
		return PlayerStatsFullPayload{
			PlayerStats:        s,
			TotalPlaytimeHours: HoursFromSeconds(s.TotalPlaytimeSeconds),
			KDRatio:            KDRatio(s.PvPKills, s.PvPDeaths),
		}
	}
	return PlayerStatsPublicPayload{
		Username:         s.Username,
		Level:            s.Level,
		CreditsEarned:    s.CreditsEarned,
		ExperiencePoints: s.ExperiencePoints,
		GuildName:        s.GuildName,
		PvPKills:         s.PvPKills,
		PvPDeaths:        s.PvPDeaths,
		KDRatio:          KDRatio(s.PvPKills, s.PvPDeaths),
	}
}

// PlayerStatsList builds payloads for a list of stats rows at the given tier
func PlayerStatsList(stats []models.PlayerStats, tier Tier) []any {
	payloads := make([]any, 0, len(stats))
	for _, s := range stats {
		payloads = append(payloads, PlayerStatsResponse(s, tier))
	}
	return payloads
}
