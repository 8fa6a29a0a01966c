package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config describes how to reach the store
type Config struct {
	Driver string

	// Path is the SQLite database file
	Path string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// DSN overrides the connection string built from the fields above
	DSN string

	HealthInterval time.Duration

	// Location is used for month/year filters and "today"
	Location *time.Location
}

// ConfigFromEnv reads the store configuration from the environment
func ConfigFromEnv() Config {
	cfg := Config{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		Path:     getEnv("DB_PATH", filepath.Join("data", "bluewater.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "bluewater"),
		Password: getEnv("DB_PASSWORD", "bluewater"),
		Name:     getEnv("DB_NAME", "bluewater"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		DSN:      os.Getenv("DATABASE_URL"),
		Location: time.Local,
	}

	cfg.HealthInterval = 30 * time.Second
	if raw := os.Getenv("DB_HEALTH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.HealthInterval = d
		}
	}

	return cfg
}

// dataSource returns the database/sql driver name and connection string
func (c Config) dataSource() (string, string, error) {
	switch c.Driver {
	case "", DriverSQLite:
		if c.DSN != "" {
			return DriverSQLite, c.DSN, nil
		}
		if c.Path == "" {
			return "", "", fmt.Errorf("sqlite driver requires a database path")
		}
		params := url.Values{}
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", "busy_timeout(5000)")
		params.Set("_time_format", "sqlite")
		return DriverSQLite, c.Path + "?" + params.Encode(), nil

	case DriverPostgres:
		if c.DSN != "" {
			return DriverPostgres, c.DSN, nil
		}
		return DriverPostgres, fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
		), nil

	default:
		return "", "", fmt.Errorf("unsupported database driver: %s (valid: %s, %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
