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

// GetAllTanks returns every tank ordered by name
func (dm *DatabaseManager) GetAllTanks(ctx context.Context) ([]models.Tank, error) {
	rows, err := dm.QueryWithHealthCheck(ctx, `SELECT id, name, active FROM tanks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tanks: %w", err)
	}
	defer rows.Close()

	tanks := []models.Tank{}
	for rows.Next() {
		var t models.Tank
		if err := rows.Scan(&t.ID, &t.Name, &t.Active); err != nil {
			return nil, fmt.Errorf("failed to scan tank: %w", err)
		}
		tanks = append(tanks, t)
	}

	return tanks, rows.Err()
}

// GetTankByID returns a single tank
func (dm *DatabaseManager) GetTankByID(ctx context.Context, id int64) (*models.Tank, error) {
	var t models.Tank
	err := dm.QueryRowWithHealthCheck(ctx, `SELECT id, name, active FROM tanks WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tank %d: %w", id, err)
	}

	return &t, nil
}

// UpdateTank renames a tank and sets its active flag
func (dm *DatabaseManager) UpdateTank(ctx context.Context, tank models.Tank) models.Result {
	tank.Name = strings.TrimSpace(tank.Name)
	if tank.ID <= 0 {
		return models.Failed(models.ReasonValidation, fmt.Sprintf("invalid tank id: %d", tank.ID))
	}
	if tank.Name == "" {
		return models.Failed(models.ReasonValidation, "tank name is required")
	}

	err := dm.withTransaction(ctx, "update_tank", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tanks SET name = $1, active = $2 WHERE id = $3`,
			tank.Name, bool(tank.Active), tank.ID)
		if err != nil {
			return fmt.Errorf("failed to update tank %d: %w", tank.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: id %d", ErrTankNotFound, tank.ID)
		}
		return nil
	})
	if err != nil {
		return failure("update tank", err)
	}

	log.Printf("✓ Updated tank %d (%s)", tank.ID, tank.Name)
	res := models.Succeeded("Tank updated successfully", tank.ID)
	res.RowsAffected = 1
	return res
}

// ActivateTanks applies a batch of activation changes; either all of them apply or none
func (dm *DatabaseManager) ActivateTanks(ctx context.Context, changes []models.TankActivation) models.Result {
	if len(changes) == 0 {
		return models.Failed(models.ReasonValidation, "no tanks to update")
	}

	names := make([]string, len(changes))
	for i, change := range changes {
		names[i] = strings.TrimSpace(change.Name)
		if names[i] == "" {
			return models.Failed(models.ReasonValidation, fmt.Sprintf("tank %d: tank_name is required", i+1))
		}
	}

	err := dm.withTransaction(ctx, "activate_tanks", func(ctx context.Context, tx *sql.Tx) error {
		for i, change := range changes {
			if _, err := setTankActivation(ctx, tx, names[i], bool(change.Active)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failure("activate tanks", err)
	}

	log.Printf("✓ Updated activation of %d tank(s)", len(changes))
	res := models.Succeeded(fmt.Sprintf("%d tank(s) updated", len(changes)), 0)
	res.RowsAffected = int64(len(changes))
	return res
}

// GetFishTypes returns every fish type ordered by name
func (dm *DatabaseManager) GetFishTypes(ctx context.Context) ([]models.FishType, error) {
	rows, err := dm.QueryWithHealthCheck(ctx, `SELECT id, name FROM fish_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fish types: %w", err)
	}
	defer rows.Close()

	fishTypes := []models.FishType{}
	for rows.Next() {
		var f models.FishType
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan fish type: %w", err)
		}
		fishTypes = append(fishTypes, f)
	}

	return fishTypes, rows.Err()
}
