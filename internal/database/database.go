package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "swg"),
		Password:        getEnv("DB_PASSWORD", "swg_password"),
		DBName:          getEnv("DB_NAME", "swg_infinity"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
	}
}

// NewConnection creates a new database connection with the provided configuration
func NewConnection(config *Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[Database] Connected to %s:%s/%s", config.Host, config.Port, config.DBName)
	log.Printf("[Database] Pool config: MaxOpen=%d, MaxIdle=%d", config.MaxOpenConns, config.MaxIdleConns)

	return &DB{db}, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[Database] Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("[Database] Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// InitSchema creates database tables if they don't exist
func (db *DB) InitSchema() error {
	schema := `
	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(150) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_online BOOLEAN NOT NULL DEFAULT FALSE,
		date_joined TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP
	);

	-- Server status snapshots
	CREATE TABLE IF NOT EXISTS server_status (
		id SERIAL PRIMARY KEY,
		server_name VARCHAR(100) NOT NULL DEFAULT 'SWG Infinity',
		status VARCHAR(20) NOT NULL DEFAULT 'offline',
		player_count INTEGER NOT NULL DEFAULT 0,
		max_players INTEGER NOT NULL DEFAULT 1000,
		uptime_seconds BIGINT NOT NULL DEFAULT 0,
		last_restart TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		cpu_usage DOUBLE PRECISION NOT NULL DEFAULT 0,
		memory_usage DOUBLE PRECISION NOT NULL DEFAULT 0,
		message_of_the_day TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Server configuration settings
	CREATE TABLE IF NOT EXISTS server_configurations (
		id SERIAL PRIMARY KEY,
		setting_name VARCHAR(100) UNIQUE NOT NULL,
		setting_value TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Game sessions
	CREATE TABLE IF NOT EXISTS game_sessions (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		character_name VARCHAR(50) NOT NULL,
		login_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		logout_time TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		ip_address VARCHAR(45),
		location_x DOUBLE PRECISION,
		location_y DOUBLE PRECISION,
		location_z DOUBLE PRECISION,
		planet VARCHAR(50)
	);

	-- Player statistics (one row per user)
	CREATE TABLE IF NOT EXISTS player_stats (
		id SERIAL PRIMARY KEY,
		user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		total_sessions INTEGER NOT NULL DEFAULT 0,
		total_playtime_seconds BIGINT NOT NULL DEFAULT 0,
		last_seen TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		favorite_planet VARCHAR(50),
		credits_earned BIGINT NOT NULL DEFAULT 0,
		experience_points BIGINT NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		guild_name VARCHAR(100),
		pvp_kills INTEGER NOT NULL DEFAULT 0,
		pvp_deaths INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_users_is_online ON users(is_online);
	CREATE INDEX IF NOT EXISTS idx_server_status_updated_at ON server_status(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_server_configurations_is_active ON server_configurations(is_active);
	CREATE INDEX IF NOT EXISTS idx_game_sessions_user_id ON game_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_game_sessions_login_time ON game_sessions(login_time DESC);
	CREATE INDEX IF NOT EXISTS idx_game_sessions_is_active ON game_sessions(is_active);
	CREATE INDEX IF NOT EXISTS idx_player_stats_user_id ON player_stats(user_id);
	CREATE INDEX IF NOT EXISTS idx_player_stats_level ON player_stats(level DESC);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Println("[Database] Schema initialized with indexes")
	return nil
}
