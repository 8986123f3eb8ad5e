package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/swg-infinity/api/internal/database"
	"github.com/swg-infinity/api/internal/models"
)

// Postgres implements Store on top of a PostgreSQL connection pool
type Postgres struct {
	db *database.DB
}

// NewPostgres creates a Postgres-backed store
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

// metricColumns whitelists leaderboard metrics against ORDER BY injection
var metricColumns = map[string]string{
	models.MetricLevel:            "level",
	models.MetricExperiencePoints: "experience_points",
	models.MetricCreditsEarned:    "credits_earned",
	models.MetricPvPKills:         "pvp_kills",
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// --- Users ---

const userColumns = `id, username, email, first_name, last_name, password_hash,
	is_active, is_staff, is_online, date_joined, last_login`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.IsOnline, &u.DateJoined, &u.LastLogin,
	)
	return u, err
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) GetUser(ctx context.Context, id int) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(p.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_active, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	created, err := scanUser(p.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsActive, u.IsStaff))
	if err != nil {
		return models.User{}, mapError(err)
	}
	return created, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	query := `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5,
			password_hash = $6, is_active = $7, is_staff = $8
		WHERE id = $1
		RETURNING ` + userColumns
	updated, err := scanUser(p.db.QueryRowContext(ctx, query,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsActive, u.IsStaff))
	if err != nil {
		return models.User{}, mapError(err)
	}
	return updated, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (p *Postgres) CountOnlineUsers(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_online`).Scan(&count)
	return count, err
}

func (p *Postgres) OnlinePlayers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT DISTINCT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
			u.is_active, u.is_staff, u.is_online, u.date_joined, u.last_login
		FROM users u
		JOIN game_sessions gs ON gs.user_id = u.id
		WHERE gs.is_active AND gs.logout_time IS NULL
		ORDER BY u.id`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list online players: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) TouchLastLogin(ctx context.Context, id int, when time.Time) error {
	_, err := p.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, when)
	return err
}

// --- Server status ---

const statusColumns = `id, server_name, status, player_count, max_players, uptime_seconds,
	last_restart, cpu_usage, memory_usage, message_of_the_day, created_at, updated_at`

func scanStatus(row interface{ Scan(...any) error }) (models.ServerStatus, error) {
	var s models.ServerStatus
	err := row.Scan(
		&s.ID, &s.ServerName, &s.Status, &s.PlayerCount, &s.MaxPlayers, &s.UptimeSeconds,
		&s.LastRestart, &s.CPUUsage, &s.MemoryUsage, &s.MessageOfTheDay, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (p *Postgres) ListServerStatus(ctx context.Context) ([]models.ServerStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM server_status ORDER BY updated_at DESC`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list server status: %w", err)
	}
	defer rows.Close()

	statuses := make([]models.ServerStatus, 0)
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (p *Postgres) GetServerStatus(ctx context.Context, id int) (models.ServerStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM server_status WHERE id = $1`
	s, err := scanStatus(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.ServerStatus{}, mapError(err)
	}
	return s, nil
}

func (p *Postgres) CreateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error) {
	query := `
		INSERT INTO server_status (server_name, status, player_count, max_players, uptime_seconds,
			last_restart, cpu_usage, memory_usage, message_of_the_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + statusColumns
	created, err := scanStatus(p.db.QueryRowContext(ctx, query,
		s.ServerName, s.Status, s.PlayerCount, s.MaxPlayers, s.UptimeSeconds,
		s.LastRestart, s.CPUUsage, s.MemoryUsage, s.MessageOfTheDay))
	if err != nil {
		return models.ServerStatus{}, mapError(err)
	}
	return created, nil
}

func (p *Postgres) UpdateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error) {
	query := `
		UPDATE server_status
		SET server_name = $2, status = $3, player_count = $4, max_players = $5,
			uptime_seconds = $6, last_restart = $7, cpu_usage = $8, memory_usage = $9,
			message_of_the_day = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + statusColumns
	updated, err := scanStatus(p.db.QueryRowContext(ctx, query,
		s.ID, s.ServerName, s.Status, s.PlayerCount, s.MaxPlayers, s.UptimeSeconds,
		s.LastRestart, s.CPUUsage, s.MemoryUsage, s.MessageOfTheDay))
	if err != nil {
		return models.ServerStatus{}, mapError(err)
	}
	return updated, nil
}

func (p *Postgres) DeleteServerStatus(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM server_status WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) LatestServerStatus(ctx context.Context) (models.ServerStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM server_status ORDER BY updated_at DESC LIMIT 1`
	s, err := scanStatus(p.db.QueryRowContext(ctx, query))
	if err != nil {
		return models.ServerStatus{}, mapError(err)
	}
	return s, nil
}

// --- Server configuration ---

const configColumns = `id, setting_name, setting_value, description, is_active, created_at, updated_at`

func scanConfig(row interface{ Scan(...any) error }) (models.ServerConfiguration, error) {
	var c models.ServerConfiguration
	err := row.Scan(&c.ID, &c.SettingName, &c.SettingValue, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (p *Postgres) ListConfigs(ctx context.Context) ([]models.ServerConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM server_configurations ORDER BY setting_name`
	return p.queryConfigs(ctx, query)
}

func (p *Postgres) ActiveConfigs(ctx context.Context) ([]models.ServerConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM server_configurations WHERE is_active ORDER BY setting_name`
	return p.queryConfigs(ctx, query)
}

func (p *Postgres) queryConfigs(ctx context.Context, query string, args ...any) ([]models.ServerConfiguration, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	configs := make([]models.ServerConfiguration, 0)
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (p *Postgres) GetConfig(ctx context.Context, id int) (models.ServerConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM server_configurations WHERE id = $1`
	c, err := scanConfig(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.ServerConfiguration{}, mapError(err)
	}
	return c, nil
}

func (p *Postgres) CreateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error) {
	query := `
		INSERT INTO server_configurations (setting_name, setting_value, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + configColumns
	created, err := scanConfig(p.db.QueryRowContext(ctx, query,
		c.SettingName, c.SettingValue, c.Description, c.IsActive))
	if err != nil {
		return models.ServerConfiguration{}, mapError(err)
	}
	return created, nil
}

func (p *Postgres) UpdateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error) {
	query := `
		UPDATE server_configurations
		SET setting_name = $2, setting_value = $3, description = $4, is_active = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + configColumns
	updated, err := scanConfig(p.db.QueryRowContext(ctx, query,
		c.ID, c.SettingName, c.SettingValue, c.Description, c.IsActive))
	if err != nil {
		return models.ServerConfiguration{}, mapError(err)
	}
	return updated, nil
}

func (p *Postgres) DeleteConfig(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM server_configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ToggleConfigActive(ctx context.Context, id int) (models.ServerConfiguration, error) {
	query := `
		UPDATE server_configurations
		SET is_active = NOT is_active, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + configColumns
	c, err := scanConfig(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.ServerConfiguration{}, mapError(err)
	}
	return c, nil
}

// --- Game sessions ---

const sessionColumns = `gs.id, gs.user_id, u.username, gs.character_name, gs.login_time,
	gs.logout_time, gs.is_active, gs.ip_address, gs.location_x, gs.location_y, gs.location_z, gs.planet`

const sessionFrom = ` FROM game_sessions gs JOIN users u ON u.id = gs.user_id`

func scanSession(row interface{ Scan(...any) error }) (models.GameSession, error) {
	var s models.GameSession
	err := row.Scan(
		&s.ID, &s.UserID, &s.Username, &s.CharacterName, &s.LoginTime,
		&s.LogoutTime, &s.IsActive, &s.IPAddress, &s.LocationX, &s.LocationY, &s.LocationZ, &s.Planet,
	)
	return s, err
}

func (p *Postgres) querySessions(ctx context.Context, query string, args ...any) ([]models.GameSession, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.GameSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (p *Postgres) ListSessions(ctx context.Context) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + sessionFrom + ` ORDER BY gs.login_time DESC`
	return p.querySessions(ctx, query)
}

func (p *Postgres) ActiveSessions(ctx context.Context) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + sessionFrom + `
		WHERE gs.is_active AND gs.logout_time IS NULL
		ORDER BY gs.login_time DESC`
	return p.querySessions(ctx, query)
}

func (p *Postgres) SessionsForUser(ctx context.Context, userID int) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + sessionFrom + `
		WHERE gs.user_id = $1
		ORDER BY gs.login_time DESC`
	return p.querySessions(ctx, query, userID)
}

func (p *Postgres) RecentSessions(ctx context.Context, limit int) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + sessionFrom + ` ORDER BY gs.login_time DESC LIMIT $1`
	return p.querySessions(ctx, query, limit)
}

func (p *Postgres) GetSession(ctx context.Context, id int) (models.GameSession, error) {
	query := `SELECT ` + sessionColumns + sessionFrom + ` WHERE gs.id = $1`
	s, err := scanSession(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.GameSession{}, mapError(err)
	}
	return s, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s models.GameSession) (models.GameSession, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.GameSession{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int
	insert := `
		INSERT INTO game_sessions (user_id, character_name, ip_address, location_x, location_y, location_z, planet)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err = tx.QueryRowContext(ctx, insert,
		s.UserID, s.CharacterName, s.IPAddress, s.LocationX, s.LocationY, s.LocationZ, s.Planet).Scan(&id)
	if err != nil {
		return models.GameSession{}, mapError(err)
	}

	// The online flag only changes inside session lifecycle transactions
	if _, err := tx.ExecContext(ctx, `UPDATE users SET is_online = TRUE WHERE id = $1`, s.UserID); err != nil {
		return models.GameSession{}, fmt.Errorf("failed to mark user online: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.GameSession{}, fmt.Errorf("failed to commit session create: %w", err)
	}

	return p.GetSession(ctx, id)
}

func (p *Postgres) UpdateSession(ctx context.Context, s models.GameSession) (models.GameSession, error) {
	query := `
		UPDATE game_sessions
		SET character_name = $2, logout_time = $3, is_active = $4, ip_address = $5,
			location_x = $6, location_y = $7, location_z = $8, planet = $9
		WHERE id = $1`
	result, err := p.db.ExecContext(ctx, query,
		s.ID, s.CharacterName, s.LogoutTime, s.IsActive, s.IPAddress,
		s.LocationX, s.LocationY, s.LocationZ, s.Planet)
	if err != nil {
		return models.GameSession{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.GameSession{}, err
	}
	if affected == 0 {
		return models.GameSession{}, ErrNotFound
	}
	return p.GetSession(ctx, s.ID)
}

func (p *Postgres) DeleteSession(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EndSession(ctx context.Context, id int, now time.Time) (models.GameSession, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.GameSession{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM game_sessions WHERE id = $1`, id).Scan(&userID); err != nil {
		return models.GameSession{}, mapError(err)
	}

	// Set-once: a second end call leaves logout_time untouched
	update := `
		UPDATE game_sessions
		SET logout_time = COALESCE(logout_time, $2), is_active = FALSE
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, now); err != nil {
		return models.GameSession{}, fmt.Errorf("failed to end session: %w", err)
	}

	offline := `
		UPDATE users SET is_online = FALSE
		WHERE id = $1
		AND NOT EXISTS (
			SELECT 1 FROM game_sessions
			WHERE user_id = $1 AND is_active AND logout_time IS NULL
		)`
	if _, err := tx.ExecContext(ctx, offline, userID); err != nil {
		return models.GameSession{}, fmt.Errorf("failed to mark user offline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.GameSession{}, fmt.Errorf("failed to commit session end: %w", err)
	}

	return p.GetSession(ctx, id)
}

func (p *Postgres) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_sessions`).Scan(&count)
	return count, err
}

func (p *Postgres) CountActiveSessions(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_sessions WHERE is_active AND logout_time IS NULL`).Scan(&count)
	return count, err
}

// --- Player stats ---

const statsColumns = `ps.id, ps.user_id, u.username, ps.total_sessions, ps.total_playtime_seconds,
	ps.last_seen, ps.favorite_planet, ps.credits_earned, ps.experience_points, ps.level,
	ps.guild_name, ps.pvp_kills, ps.pvp_deaths, ps.created_at, ps.updated_at`

const statsFrom = ` FROM player_stats ps JOIN users u ON u.id = ps.user_id`

func scanStats(row interface{ Scan(...any) error }) (models.PlayerStats, error) {
	var ps models.PlayerStats
	err := row.Scan(
		&ps.ID, &ps.UserID, &ps.Username, &ps.TotalSessions, &ps.TotalPlaytimeSeconds,
		&ps.LastSeen, &ps.FavoritePlanet, &ps.CreditsEarned, &ps.ExperiencePoints, &ps.Level,
		&ps.GuildName, &ps.PvPKills, &ps.PvPDeaths, &ps.CreatedAt, &ps.UpdatedAt,
	)
	return ps, err
}

func (p *Postgres) queryStats(ctx context.Context, query string, args ...any) ([]models.PlayerStats, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list player stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.PlayerStats, 0)
	for rows.Next() {
		ps, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		stats = append(stats, ps)
	}
	return stats, rows.Err()
}

func (p *Postgres) ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error) {
	query := `SELECT ` + statsColumns + statsFrom + ` ORDER BY ps.id`
	return p.queryStats(ctx, query)
}

func (p *Postgres) GetPlayerStats(ctx context.Context, id int) (models.PlayerStats, error) {
	query := `SELECT ` + statsColumns + statsFrom + ` WHERE ps.id = $1`
	ps, err := scanStats(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.PlayerStats{}, mapError(err)
	}
	return ps, nil
}

func (p *Postgres) CreatePlayerStats(ctx context.Context, s models.PlayerStats) (models.PlayerStats, error) {
	var id int
	query := `
		INSERT INTO player_stats (user_id, total_sessions, total_playtime_seconds, favorite_planet,
			credits_earned, experience_points, level, guild_name, pvp_kills, pvp_deaths)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := p.db.QueryRowContext(ctx, query,
		s.UserID, s.TotalSessions, s.TotalPlaytimeSeconds, s.FavoritePlanet,
		s.CreditsEarned, s.ExperiencePoints, s.Level, s.GuildName, s.PvPKills, s.PvPDeaths).Scan(&id)
	if err != nil {
		return models.PlayerStats{}, mapError(err)
	}
	return p.GetPlayerStats(ctx, id)
}

func (p *Postgres) UpdatePlayerStats(ctx context.Context, s models.PlayerStats) (models.PlayerStats, error) {
	query := `
		UPDATE player_stats
		SET total_sessions = $2, total_playtime_seconds = $3, last_seen = CURRENT_TIMESTAMP,
			favorite_planet = $4, credits_earned = $5, experience_points = $6, level = $7,
			guild_name = $8, pvp_kills = $9, pvp_deaths = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	result, err := p.db.ExecContext(ctx, query,
		s.ID, s.TotalSessions, s.TotalPlaytimeSeconds, s.FavoritePlanet,
		s.CreditsEarned, s.ExperiencePoints, s.Level, s.GuildName, s.PvPKills, s.PvPDeaths)
	if err != nil {
		return models.PlayerStats{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.PlayerStats{}, err
	}
	if affected == 0 {
		return models.PlayerStats{}, ErrNotFound
	}
	return p.GetPlayerStats(ctx, s.ID)
}

func (p *Postgres) DeletePlayerStats(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM player_stats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player stats: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Leaderboard(ctx context.Context, metric string, limit int) ([]models.PlayerStats, error) {
	column, ok := metricColumns[metric]
	if !ok {
		return nil, fmt.Errorf("invalid leaderboard metric: %s", metric)
	}
	query := `SELECT ` + statsColumns + statsFrom +
		fmt.Sprintf(` ORDER BY ps.%s DESC, ps.id ASC LIMIT $1`, column)
	return p.queryStats(ctx, query, limit)
}

func (p *Postgres) Statistics(ctx context.Context) (ServerStatistics, error) {
	var stats ServerStatistics

	query := `SELECT COUNT(*), COALESCE(AVG(level), 0) FROM player_stats`
	if err := p.db.QueryRowContext(ctx, query).Scan(&stats.TotalPlayers, &stats.AverageLevel); err != nil {
		return ServerStatistics{}, fmt.Errorf("failed to aggregate player stats: %w", err)
	}

	var err error
	if stats.TotalSessions, err = p.CountSessions(ctx); err != nil {
		return ServerStatistics{}, err
	}
	if stats.ActiveSessions, err = p.CountActiveSessions(ctx); err != nil {
		return ServerStatistics{}, err
	}
	if stats.OnlinePlayers, err = p.CountOnlineUsers(ctx); err != nil {
		return ServerStatistics{}, err
	}

	return stats, nil
}
