package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// ResolveTank returns the id of the named tank, creating it (inactive) on first use
func (dm *DatabaseManager) ResolveTank(ctx context.Context, name string) models.Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Failed(models.ReasonValidation, "tank name is required")
	}

	var id int64
	err := dm.withTransaction(ctx, "resolve_tank", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		id, err = resolveTank(ctx, tx, name)
		return err
	})
	if err != nil {
		return failure("resolve tank", err)
	}

	return models.Succeeded(fmt.Sprintf("Tank %s resolved", name), id)
}

// ResolveFishType returns the id of the named fish type, creating it on first use
func (dm *DatabaseManager) ResolveFishType(ctx context.Context, name string) models.Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Failed(models.ReasonValidation, "fish type name is required")
	}

	var id int64
	err := dm.withTransaction(ctx, "resolve_fish_type", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		id, err = resolveFishType(ctx, tx, name)
		return err
	})
	if err != nil {
		return failure("resolve fish type", err)
	}

	return models.Succeeded(fmt.Sprintf("Fish type %s resolved", name), id)
}

// CreateFishType registers a fish type. Names are unique, so adding an
// existing name returns the existing id instead of a second row.
func (dm *DatabaseManager) CreateFishType(ctx context.Context, name string) models.Result {
	res := dm.ResolveFishType(ctx, name)
	if !res.Success {
		return res
	}

	log.Printf("✓ Fish type %s registered (ID: %d)", strings.TrimSpace(name), res.ID)
	return models.Succeeded(fmt.Sprintf("%s has been added to the database", strings.TrimSpace(name)), res.ID)
}

// SetTankActivation sets the active flag of the named tank, creating the tank if needed
func (dm *DatabaseManager) SetTankActivation(ctx context.Context, name string, active bool) models.Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Failed(models.ReasonValidation, "tank name is required")
	}

	var id int64
	err := dm.withTransaction(ctx, "set_tank_activation", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		id, err = setTankActivation(ctx, tx, name, active)
		return err
	})
	if err != nil {
		return failure("set tank activation", err)
	}

	state := "inactive"
	if active {
		state = "active"
	}
	return models.Succeeded(fmt.Sprintf("Tank %s is %s", name, state), id)
}

// resolveTank is the find-or-create primitive for tanks, run inside the caller's transaction
func resolveTank(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return findOrCreate(ctx, tx, "tank", name,
		`INSERT INTO tanks (name, active) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		`SELECT id FROM tanks WHERE name = $1`,
		name, false,
	)
}

// resolveFishType is the find-or-create primitive for fish types
func resolveFishType(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return findOrCreate(ctx, tx, "fish type", name,
		`INSERT INTO fish_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		`SELECT id FROM fish_types WHERE name = $1`,
		name,
	)
}

func findOrCreate(ctx context.Context, tx *sql.Tx, kind, name, insertQuery, selectQuery string, insertArgs ...interface{}) (int64, error) {
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return 0, fmt.Errorf("failed to create %s %s: %w", kind, name, err)
	}

	var id int64
	err := tx.QueryRowContext(ctx, selectQuery, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %s", ErrUnresolvedReference, kind, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s %s: %w", kind, name, err)
	}

	return id, nil
}

func setTankActivation(ctx context.Context, tx *sql.Tx, name string, active bool) (int64, error) {
	query := `
        INSERT INTO tanks (name, active)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET active = excluded.active
        RETURNING id
    `

	var id int64
	if err := tx.QueryRowContext(ctx, query, name, active).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to set activation of tank %s: %w", name, err)
	}
	return id, nil
}
