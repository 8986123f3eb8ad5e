package models

// ServerStatus status constants
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
	StatusStarting    = "starting"
)

// ValidStatuses is a map of valid server status values
var ValidStatuses = map[string]bool{
	StatusOnline:      true,
	StatusOffline:     true,
	StatusMaintenance: true,
	StatusStarting:    true,
}

// IsValidStatus checks if a server status value is valid
func IsValidStatus(status string) bool {
	return ValidStatuses[status]
}

// Leaderboard metric constants
const (
	MetricLevel            = "level"
	MetricExperiencePoints = "experience_points"
	MetricCreditsEarned    = "credits_earned"
	MetricPvPKills         = "pvp_kills"
)

// ValidMetrics is a map of valid leaderboard metrics
var ValidMetrics = map[string]bool{
	MetricLevel:            true,
	MetricExperiencePoints: true,
	MetricCreditsEarned:    true,
	MetricPvPKills:         true,
}

// IsValidMetric checks if a leaderboard metric is valid
func IsValidMetric(metric string) bool {
	return ValidMetrics[metric]
}
