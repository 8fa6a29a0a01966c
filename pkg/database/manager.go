package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	// ErrStoreUnavailable is returned when the store cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSchemaMissing is returned when the store has not been initialized
	ErrSchemaMissing = errors.New("store schema missing")
)

// DatabaseManager is the explicit store handle. It is opened once at startup,
// passed to every component that needs it and closed at shutdown.
type DatabaseManager struct {
	db            *sql.DB
	driver        string
	path          string
	location      *time.Location
	healthChecker *HealthChecker

	// writeMu serializes write transactions
	writeMu sync.Mutex

	clock func() time.Time
}

// NewDatabaseManagerFromEnv opens the store described by the environment
func NewDatabaseManagerFromEnv() (*DatabaseManager, error) {
	return NewDatabaseManager(ConfigFromEnv())
}

// NewDatabaseManager opens the store and starts health checking
func NewDatabaseManager(cfg Config) (*DatabaseManager, error) {
	db, driver, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	dm := newDatabaseManager(db, driver, cfg)
	dm.healthChecker = NewHealthChecker(db, interval)
	dm.healthChecker.Start()

	log.Printf("✓ Connected to %s store", driver)
	return dm, nil
}

func newDatabaseManager(db *sql.DB, driver string, cfg Config) *DatabaseManager {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &DatabaseManager{
		db:       db,
		driver:   driver,
		path:     cfg.Path,
		location: loc,
		clock:    time.Now,
	}
}

// GetDB returns the underlying database connection
func (dm *DatabaseManager) GetDB() *sql.DB {
	return dm.db
}

// Driver returns the name of the driver backing the store
func (dm *DatabaseManager) Driver() string {
	return dm.driver
}

// Path returns the SQLite database file, empty for other drivers
func (dm *DatabaseManager) Path() string {
	if dm.driver != DriverSQLite {
		return ""
	}
	return dm.path
}

// Location returns the time zone used for calendar filters
func (dm *DatabaseManager) Location() *time.Location {
	return dm.location
}

// Close closes the database connection and stops health checking
func (dm *DatabaseManager) Close() error {
	if dm.healthChecker != nil {
		dm.healthChecker.Stop()
	}
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}

// QueryWithHealthCheck executes a query with connection health verification
func (dm *DatabaseManager) QueryWithHealthCheck(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := dm.ensureConnection(ctx); err != nil {
		return nil, err
	}

	return dm.db.QueryContext(ctx, query, args...)
}

// QueryRowWithHealthCheck executes a query that returns a single row with health check.
// When the store is unreachable the returned row reports ErrStoreUnavailable on Scan.
func (dm *DatabaseManager) QueryRowWithHealthCheck(ctx context.Context, query string, args ...interface{}) rowScanner {
	if err := dm.ensureConnection(ctx); err != nil {
		return errRow{err: err}
	}

	return dm.db.QueryRowContext(ctx, query, args...)
}

// ExecWithHealthCheck executes a statement with connection health verification
func (dm *DatabaseManager) ExecWithHealthCheck(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := dm.ensureConnection(ctx); err != nil {
		return nil, err
	}

	return dm.db.ExecContext(ctx, query, args...)
}

// IsConnectionHealthy returns the current health status
func (dm *DatabaseManager) IsConnectionHealthy() bool {
	if dm.healthChecker == nil {
		return true
	}
	return dm.healthChecker.IsHealthy()
}

// Ping verifies the store answers right now
func (dm *DatabaseManager) Ping(ctx context.Context) error {
	return dm.ensureConnection(ctx)
}

func (dm *DatabaseManager) ensureConnection(ctx context.Context) error {
	if dm.healthChecker == nil {
		return nil
	}
	if err := dm.healthChecker.EnsureConnection(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Init initializes the database with migrations
func (dm *DatabaseManager) Init() error {
	log.Println("Running database migrations...")

	runner, err := NewMigrationsRunner(dm.db, dm.driver)
	if err != nil {
		return fmt.Errorf("failed to create migration runner: %w", err)
	}

	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := dm.VerifySchema(context.Background()); err != nil {
		return err
	}

	log.Println("✓ Database initialization completed successfully")
	return nil
}

// VerifySchema checks that every table the store needs exists
func (dm *DatabaseManager) VerifySchema(ctx context.Context) error {
	for _, table := range []string{"readings", "tanks", "fish_types", "tank_snapshots", "users"} {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1 = 0", table)
		if err := dm.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return fmt.Errorf("%w: table %s: %v", ErrSchemaMissing, table, err)
		}
	}
	return nil
}

func (dm *DatabaseManager) now() time.Time {
	return dm.clock()
}

// rowScanner is satisfied by *sql.Row
type rowScanner interface {
	Scan(dest ...interface{}) error
}

type errRow struct {
	err error
}

func (r errRow) Scan(...interface{}) error {
	return r.err
}

// connectDatabase establishes a connection to the configured store
func connectDatabase(cfg Config) (*sql.DB, string, error) {
	driver, dsn, err := cfg.dataSource()
	if err != nil {
		return nil, "", err
	}

	if driver == DriverSQLite && cfg.DSN == "" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("%w: failed to ping database: %v", ErrStoreUnavailable, err)
	}

	// One connection: statements and transactions are serialized by the handle
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, driver, nil
}
