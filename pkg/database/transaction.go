package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// txFunc runs the statements of one write operation
type txFunc func(ctx context.Context, tx *sql.Tx) error

// withTransaction runs fn inside a single write transaction.
// Writers are serialized and the transaction ignores caller cancellation:
// once begun it always ends in an explicit commit or rollback.
func (dm *DatabaseManager) withTransaction(ctx context.Context, operation string, fn txFunc) error {
	dm.writeMu.Lock()
	defer dm.writeMu.Unlock()

	if err := dm.ensureConnection(ctx); err != nil {
		observeTransaction(operation, outcomeBeginFailed, time.Now())
		return err
	}

	started := time.Now()
	txCtx := context.WithoutCancel(ctx)

	tx, err := dm.db.BeginTx(txCtx, nil)
	if err != nil {
		observeTransaction(operation, outcomeBeginFailed, started)
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			dm.rollback(operation, tx)
			observeTransaction(operation, outcomeRolledBack, started)
			panic(p)
		}
	}()

	if err := fn(txCtx, tx); err != nil {
		dm.rollback(operation, tx)
		observeTransaction(operation, outcomeRolledBack, started)
		return err
	}

	if err := tx.Commit(); err != nil {
		observeTransaction(operation, outcomeCommitFailed, started)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	observeTransaction(operation, outcomeCommitted, started)
	return nil
}

func (dm *DatabaseManager) rollback(operation string, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		log.Printf("❌ Rollback of %s failed: %v", operation, err)
	}
}

// storeTime is the form every timestamp is written in: UTC, whole seconds
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// queryTime is the form range bounds are compared in
func queryTime(t time.Time) time.Time {
	return t.UTC()
}
