package database

import (
	"context"
	"fmt"
	"log"
	"os"
)

// SnapshotTo writes a consistent copy of the store to dest. dest must not exist.
func (dm *DatabaseManager) SnapshotTo(ctx context.Context, dest string) error {
	if dm.driver != DriverSQLite {
		return fmt.Errorf("snapshots require the %s driver, store uses %s", DriverSQLite, dm.driver)
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("snapshot destination already exists: %s", dest)
	}

	if _, err := dm.ExecWithHealthCheck(ctx, `VACUUM INTO $1`, dest); err != nil {
		return fmt.Errorf("failed to snapshot store: %w", err)
	}

	log.Printf("✓ Store snapshot written to %s", dest)
	return nil
}
