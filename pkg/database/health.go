package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// HealthChecker monitors the store connection
type HealthChecker struct {
	db            *sql.DB
	checkInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	ticker        *time.Ticker
	mu            sync.RWMutex
	isHealthy     bool
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *sql.DB, checkInterval time.Duration) *HealthChecker {
	return &HealthChecker{
		db:            db,
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
		isHealthy:     true,
	}
}

// Start begins monitoring the database connection
func (chc *HealthChecker) Start() {
	chc.ticker = time.NewTicker(chc.checkInterval)
	storeHealthy.Set(1)

	go func() {
		for {
			select {
			case <-chc.stopChan:
				chc.ticker.Stop()
				return
			case <-chc.ticker.C:
				chc.checkConnection()
			}
		}
	}()
}

// Stop stops monitoring; calling it more than once is harmless
func (chc *HealthChecker) Stop() {
	chc.stopOnce.Do(func() {
		close(chc.stopChan)
	})
}

// checkConnection pings the store and records the outcome.
// database/sql reopens dropped connections on the next use, so a failed
// ping only flips the status until a later ping succeeds.
func (chc *HealthChecker) checkConnection() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chc.record(chc.db.PingContext(ctx))
}

// record updates the status from a ping result. A ping that ran out of time
// was still queued behind a long statement on the single connection and
// says nothing about reachability.
func (chc *HealthChecker) record(err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return
	}
	chc.setHealthy(err)
}

func (chc *HealthChecker) setHealthy(err error) {
	chc.mu.Lock()
	defer chc.mu.Unlock()

	if err != nil {
		if chc.isHealthy {
			log.Printf("❌ Database connection health check failed: %v", err)
		}
		chc.isHealthy = false
		storeHealthy.Set(0)
		return
	}

	if !chc.isHealthy {
		log.Println("✓ Database connection restored")
	}
	chc.isHealthy = true
	storeHealthy.Set(1)
}

// IsHealthy returns the current health status of the connection
func (chc *HealthChecker) IsHealthy() bool {
	chc.mu.RLock()
	defer chc.mu.RUnlock()
	return chc.isHealthy
}

// EnsureConnection pings the store before a statement runs. The ping waits
// for the connection as long as ctx allows, like the statement itself would.
func (chc *HealthChecker) EnsureConnection(ctx context.Context) error {
	err := chc.db.PingContext(ctx)
	chc.record(err)
	if err != nil {
		return fmt.Errorf("database connection check failed: %w", err)
	}

	return nil
}
