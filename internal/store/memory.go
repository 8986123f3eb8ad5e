package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/swg-infinity/api/internal/models"
)

// Memory is a mutex-guarded in-memory Store used by tests and local
// development. Semantics mirror the Postgres implementation.
type Memory struct {
	mu sync.Mutex

	users    map[int]models.User
	statuses map[int]models.ServerStatus
	configs  map[int]models.ServerConfiguration
	sessions map[int]models.GameSession
	stats    map[int]models.PlayerStats

	nextID int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int]models.User),
		statuses: make(map[int]models.ServerStatus),
		configs:  make(map[int]models.ServerConfiguration),
		sessions: make(map[int]models.GameSession),
		stats:    make(map[int]models.PlayerStats),
		nextID:   1,
	}
}

func (m *Memory) nextIDLocked() int {
	id := m.nextID
	m.nextID++
	return id
}

func isActiveSession(s models.GameSession) bool {
	return s.IsActive && s.LogoutTime == nil
}

// --- Users ---

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) GetUser(ctx context.Context, id int) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return models.User{}, ErrDuplicate
		}
	}
	u.ID = m.nextIDLocked()
	u.DateJoined = time.Now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[u.ID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	u.DateJoined = existing.DateJoined
	u.LastLogin = existing.LastLogin
	u.IsOnline = existing.IsOnline
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) DeleteUser(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *Memory) CountOnlineUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, u := range m.users {
		if u.IsOnline {
			count++
		}
	}
	return count, nil
}

func (m *Memory) OnlinePlayers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool)
	users := make([]models.User, 0)
	for _, s := range m.sessions {
		if !isActiveSession(s) || seen[s.UserID] {
			continue
		}
		if u, ok := m.users[s.UserID]; ok {
			seen[s.UserID] = true
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) TouchLastLogin(ctx context.Context, id int, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &when
	m.users[id] = u
	return nil
}

// --- Server status ---

func (m *Memory) ListServerStatus(ctx context.Context) ([]models.ServerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]models.ServerStatus, 0, len(m.statuses))
	for _, s := range m.statuses {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].UpdatedAt.After(statuses[j].UpdatedAt) })
	return statuses, nil
}

func (m *Memory) GetServerStatus(ctx context.Context, id int) (models.ServerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statuses[id]
	if !ok {
		return models.ServerStatus{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) CreateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	s.ID = m.nextIDLocked()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.LastRestart.IsZero() {
		s.LastRestart = now
	}
	m.statuses[s.ID] = s
	return s, nil
}

func (m *Memory) UpdateServerStatus(ctx context.Context, s models.ServerStatus) (models.ServerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.statuses[s.ID]
	if !ok {
		return models.ServerStatus{}, ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.statuses[s.ID] = s
	return s, nil
}

func (m *Memory) DeleteServerStatus(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.statuses[id]; !ok {
		return ErrNotFound
	}
	delete(m.statuses, id)
	return nil
}

func (m *Memory) LatestServerStatus(ctx context.Context) (models.ServerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest models.ServerStatus
	found := false
	for _, s := range m.statuses {
		if !found || s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
			found = true
		}
	}
	if !found {
		return models.ServerStatus{}, ErrNotFound
	}
	return latest, nil
}

// --- Server configuration ---

func (m *Memory) ListConfigs(ctx context.Context) ([]models.ServerConfiguration, error) {
	return m.filterConfigs(func(models.ServerConfiguration) bool { return true }), nil
}

func (m *Memory) ActiveConfigs(ctx context.Context) ([]models.ServerConfiguration, error) {
	return m.filterConfigs(func(c models.ServerConfiguration) bool { return c.IsActive }), nil
}

func (m *Memory) filterConfigs(keep func(models.ServerConfiguration) bool) []models.ServerConfiguration {
	m.mu.Lock()
	defer m.mu.Unlock()

	configs := make([]models.ServerConfiguration, 0)
	for _, c := range m.configs {
		if keep(c) {
			configs = append(configs, c)
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].SettingName < configs[j].SettingName })
	return configs
}

func (m *Memory) GetConfig(ctx context.Context, id int) (models.ServerConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.configs[id]
	if !ok {
		return models.ServerConfiguration{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) CreateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.configs {
		if existing.SettingName == c.SettingName {
			return models.ServerConfiguration{}, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	c.ID = m.nextIDLocked()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.configs[c.ID] = c
	return c, nil
}

func (m *Memory) UpdateConfig(ctx context.Context, c models.ServerConfiguration) (models.ServerConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.configs[c.ID]
	if !ok {
		return models.ServerConfiguration{}, ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	m.configs[c.ID] = c
	return c, nil
}

func (m *Memory) DeleteConfig(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.configs[id]; !ok {
		return ErrNotFound
	}
	delete(m.configs, id)
	return nil
}

func (m *Memory) ToggleConfigActive(ctx context.Context, id int) (models.ServerConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.configs[id]
	if !ok {
		return models.ServerConfiguration{}, ErrNotFound
	}
	c.IsActive = !c.IsActive
	c.UpdatedAt = time.Now().UTC()
	m.configs[id] = c
	return c, nil
}

// --- Game sessions ---

func (m *Memory) sessionWithUsernameLocked(s models.GameSession) models.GameSession {
	if u, ok := m.users[s.UserID]; ok {
		s.Username = u.Username
	}
	return s
}

func (m *Memory) filterSessions(keep func(models.GameSession) bool) []models.GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]models.GameSession, 0)
	for _, s := range m.sessions {
		if keep(s) {
			sessions = append(sessions, m.sessionWithUsernameLocked(s))
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].LoginTime.After(sessions[j].LoginTime) })
	return sessions
}

func (m *Memory) ListSessions(ctx context.Context) ([]models.GameSession, error) {
	return m.filterSessions(func(models.GameSession) bool { return true }), nil
}

func (m *Memory) ActiveSessions(ctx context.Context) ([]models.GameSession, error) {
	return m.filterSessions(isActiveSession), nil
}

func (m *Memory) SessionsForUser(ctx context.Context, userID int) ([]models.GameSession, error) {
	return m.filterSessions(func(s models.GameSession) bool { return s.UserID == userID }), nil
}

func (m *Memory) RecentSessions(ctx context.Context, limit int) ([]models.GameSession, error) {
	sessions := m.filterSessions(func(models.GameSession) bool { return true })
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (m *Memory) GetSession(ctx context.Context, id int) (models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.GameSession{}, ErrNotFound
	}
	return m.sessionWithUsernameLocked(s), nil
}

func (m *Memory) CreateSession(ctx context.Context, s models.GameSession) (models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[s.UserID]
	if !ok {
		return models.GameSession{}, ErrNotFound
	}

	s.ID = m.nextIDLocked()
	if s.LoginTime.IsZero() {
		s.LoginTime = time.Now().UTC()
	}
	s.LogoutTime = nil
	s.IsActive = true
	m.sessions[s.ID] = s

	u.IsOnline = true
	m.users[u.ID] = u

	return m.sessionWithUsernameLocked(s), nil
}

func (m *Memory) UpdateSession(ctx context.Context, s models.GameSession) (models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[s.ID]
	if !ok {
		return models.GameSession{}, ErrNotFound
	}
	s.UserID = existing.UserID
	s.LoginTime = existing.LoginTime
	m.sessions[s.ID] = s
	return m.sessionWithUsernameLocked(s), nil
}

func (m *Memory) DeleteSession(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) EndSession(ctx context.Context, id int, now time.Time) (models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.GameSession{}, ErrNotFound
	}

	if s.LogoutTime == nil {
		s.LogoutTime = &now
	}
	s.IsActive = false
	m.sessions[id] = s

	stillOnline := false
	for _, other := range m.sessions {
		if other.UserID == s.UserID && isActiveSession(other) {
			stillOnline = true
			break
		}
	}
	if !stillOnline {
		if u, ok := m.users[s.UserID]; ok {
			u.IsOnline = false
			m.users[u.ID] = u
		}
	}

	return m.sessionWithUsernameLocked(s), nil
}

func (m *Memory) CountSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sessions)), nil
}

func (m *Memory) CountActiveSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, s := range m.sessions {
		if isActiveSession(s) {
			count++
		}
	}
	return count, nil
}

// --- Player stats ---

func (m *Memory) statsWithUsernameLocked(s models.PlayerStats) models.PlayerStats {
	if u, ok := m.users[s.UserID]; ok {
		s.Username = u.Username
	}
	return s
}

func (m *Memory) ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make([]models.PlayerStats, 0, len(m.stats))
	for _, s := range m.stats {
		stats = append(stats, m.statsWithUsernameLocked(s))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
	return stats, nil
}

func (m *Memory) GetPlayerStats(ctx context.Context, id int) (models.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[id]
	if !ok {
		return models.PlayerStats{}, ErrNotFound
	}
	return m.statsWithUsernameLocked(s), nil
}

func (m *Memory) CreatePlayerStats(ctx context.Context, s models.PlayerStats) (models.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[s.UserID]; !ok {
		return models.PlayerStats{}, ErrNotFound
	}
	for _, existing := range m.stats {
		if existing.UserID == s.UserID {
			return models.PlayerStats{}, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	s.ID = m.nextIDLocked()
	s.LastSeen = now
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Level == 0 {
		s.Level = 1
	}
	m.stats[s.ID] = s
	return m.statsWithUsernameLocked(s), nil
}

func (m *Memory) UpdatePlayerStats(ctx context.Context, s models.PlayerStats) (models.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.stats[s.ID]
	if !ok {
		return models.PlayerStats{}, ErrNotFound
	}
	now := time.Now().UTC()
	s.UserID = existing.UserID
	s.CreatedAt = existing.CreatedAt
	s.LastSeen = now
	s.UpdatedAt = now
	m.stats[s.ID] = s
	return m.statsWithUsernameLocked(s), nil
}

func (m *Memory) DeletePlayerStats(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stats[id]; !ok {
		return ErrNotFound
	}
	delete(m.stats, id)
	return nil
}

func metricValue(s models.PlayerStats, metric string) int64 {
	switch metric {
	case models.MetricLevel:
		return int64(s.Level)
	case models.MetricExperiencePoints:
		return s.ExperiencePoints
	case models.MetricCreditsEarned:
		return s.CreditsEarned
	case models.MetricPvPKills:
		return int64(s.PvPKills)
	}
	return 0
}

func (m *Memory) Leaderboard(ctx context.Context, metric string, limit int) ([]models.PlayerStats, error) {
	if !models.IsValidMetric(metric) {
		return nil, fmt.Errorf("invalid leaderboard metric: %s", metric)
	}

	stats, err := m.ListPlayerStats(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool {
		vi, vj := metricValue(stats[i], metric), metricValue(stats[j], metric)
		if vi != vj {
			return vi > vj
		}
		return stats[i].ID < stats[j].ID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (m *Memory) Statistics(ctx context.Context) (ServerStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats ServerStatistics
	stats.TotalPlayers = int64(len(m.stats))
	if len(m.stats) > 0 {
		var levelSum int64
		for _, s := range m.stats {
			levelSum += int64(s.Level)
		}
		stats.AverageLevel = float64(levelSum) / float64(len(m.stats))
	}
	stats.TotalSessions = int64(len(m.sessions))
	for _, s := range m.sessions {
		if isActiveSession(s) {
			stats.ActiveSessions++
		}
	}
	for _, u := range m.users {
		if u.IsOnline {
			stats.OnlinePlayers++
		}
	}
	return stats, nil
}
