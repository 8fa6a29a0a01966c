package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// readingColumns lists the scalar reading columns in the order of readingValues
var readingColumns = []string{
	"header_pressure_in",
	"pump_1_active",
	"pump_2_active",
	"pump_3_active",
	"pump_4_active",
	"east_pump_active",
	"east_blower_north_active",
	"west_blower_active",
	"east_blower_south_active",
	"east_well_pressure",
	"water_temperature",
	"east_blower_header_pressure",
	"west_blower_header_pressure",
	"aeration_tank_overflow",
	"diesel_room_temperature",
	"battery_voltage",
	"block_heater_active",
	"generator_autostart",
	"generator_hours",
	"generator_minutes",
	"fuel_tank_level",
	"transfer_switch_active",
	"generator_at_rest",
	"plc_active",
	"alarm_activated",
	"operator_name",
}

func readingValues(r *models.Reading) []interface{} {
	return []interface{}{
		r.HeaderPressureIn,
		bool(r.Pump1Active),
		bool(r.Pump2Active),
		bool(r.Pump3Active),
		bool(r.Pump4Active),
		bool(r.EastPumpActive),
		bool(r.EastBlowerNorthActive),
		bool(r.WestBlowerActive),
		bool(r.EastBlowerSouthActive),
		float64(r.EastWellPressure),
		float64(r.WaterTemperature),
		float64(r.EastBlowerHeaderPressure),
		float64(r.WestBlowerHeaderPressure),
		bool(r.AerationTankOverflow),
		float64(r.DieselRoomTemperature),
		float64(r.BatteryVoltage),
		bool(r.BlockHeaterActive),
		bool(r.GeneratorAutostart),
		int64(r.GeneratorHours),
		int64(r.GeneratorMinutes),
		float64(r.FuelTankLevel),
		bool(r.TransferSwitchActive),
		bool(r.GeneratorAtRest),
		bool(r.PLCActive),
		bool(r.AlarmActivated),
		r.OperatorName,
	}
}

// placeholders returns "$from, $from+1, ..." for n parameters
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// InsertReading stores a reading with all of its tank snapshots in one transaction.
// Tanks and fish types named by the entries are created on first use; any failure
// leaves the store exactly as it was.
func (dm *DatabaseManager) InsertReading(ctx context.Context, payload models.ReadingPayload) models.Result {
	payload.Tanks = append([]models.TankEntry(nil), payload.Tanks...)
	if err := payload.Normalize(); err != nil {
		return models.Failed(models.ReasonValidation, err.Error())
	}

	recordedAt := payload.Reading.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = dm.now()
	}

	var readingID int64
	err := dm.withTransaction(ctx, "insert_reading", func(ctx context.Context, tx *sql.Tx) error {
		query := fmt.Sprintf(
			"INSERT INTO readings (recorded_at, %s) VALUES ($1, %s) RETURNING id",
			strings.Join(readingColumns, ", "),
			placeholders(2, len(readingColumns)),
		)
		args := append([]interface{}{storeTime(recordedAt)}, readingValues(&payload.Reading)...)

		if err := tx.QueryRowContext(ctx, query, args...).Scan(&readingID); err != nil {
			return fmt.Errorf("failed to insert reading: %w", err)
		}

		return replaceSnapshots(ctx, tx, readingID, payload.Tanks)
	})
	if err != nil {
		return failure("insert reading", err)
	}

	log.Printf("✓ Stored reading %d with %d tank snapshot(s)", readingID, len(payload.Tanks))
	return models.Succeeded("Plant reading, tanks, and snapshots inserted successfully", readingID)
}

// EditReading replaces the scalar fields and the whole snapshot set of an existing reading.
// The recorded time only changes when the payload carries one.
func (dm *DatabaseManager) EditReading(ctx context.Context, id int64, payload models.ReadingPayload) models.Result {
	if id <= 0 {
		return models.Failed(models.ReasonValidation, fmt.Sprintf("invalid reading id: %d", id))
	}
	payload.Tanks = append([]models.TankEntry(nil), payload.Tanks...)
	if err := payload.Normalize(); err != nil {
		return models.Failed(models.ReasonValidation, err.Error())
	}

	var recordedAt interface{}
	if !payload.Reading.RecordedAt.IsZero() {
		recordedAt = storeTime(payload.Reading.RecordedAt)
	}

	err := dm.withTransaction(ctx, "edit_reading", func(ctx context.Context, tx *sql.Tx) error {
		assignments := make([]string, len(readingColumns))
		for i, column := range readingColumns {
			assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
		}
		n := len(readingColumns)
		query := fmt.Sprintf(
			"UPDATE readings SET %s, recorded_at = COALESCE($%d, recorded_at) WHERE id = $%d",
			strings.Join(assignments, ", "), n+1, n+2,
		)
		args := append(readingValues(&payload.Reading), recordedAt, id)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update reading %d: %w", id, err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update reading %d: %w", id, err)
		} else if affected == 0 {
			return fmt.Errorf("%w: id %d", ErrReadingNotFound, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tank_snapshots WHERE reading_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear snapshots of reading %d: %w", id, err)
		}

		return replaceSnapshots(ctx, tx, id, payload.Tanks)
	})
	if err != nil {
		return failure("edit reading", err)
	}

	log.Printf("✓ Updated reading %d with %d tank snapshot(s)", id, len(payload.Tanks))
	res := models.Succeeded("Plant reading and snapshots updated successfully", id)
	res.RowsAffected = 1
	return res
}

// DeleteReading removes a reading and its snapshots. Deleting an id that does not
// exist succeeds with zero rows affected.
func (dm *DatabaseManager) DeleteReading(ctx context.Context, id int64) models.Result {
	if id <= 0 {
		return models.Failed(models.ReasonValidation, fmt.Sprintf("invalid reading id: %d", id))
	}

	var affected int64
	err := dm.withTransaction(ctx, "delete_reading", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tank_snapshots WHERE reading_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete snapshots of reading %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete reading %d: %w", id, err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return failure("delete reading", err)
	}

	if affected == 0 {
		return models.Result{
			Success: true,
			Message: fmt.Sprintf("No plant reading with id %d; nothing deleted", id),
			ID:      id,
		}
	}

	log.Printf("✓ Deleted reading %d", id)
	res := models.Succeeded("Plant reading and related snapshots deleted successfully", id)
	res.RowsAffected = affected
	return res
}

// replaceSnapshots resolves every entry's tank and fish type, then inserts the snapshots in input order
func replaceSnapshots(ctx context.Context, tx *sql.Tx, readingID int64, entries []models.TankEntry) error {
	type resolved struct {
		tankID     int64
		fishTypeID int64
	}

	refs := make([]resolved, len(entries))
	for i, entry := range entries {
		tankID, err := resolveTank(ctx, tx, entry.TankName)
		if err != nil {
			return err
		}
		fishTypeID, err := resolveFishType(ctx, tx, entry.FishTypeName)
		if err != nil {
			return err
		}
		refs[i] = resolved{tankID: tankID, fishTypeID: fishTypeID}
	}

	query := `
        INSERT INTO tank_snapshots (
            reading_id, tank_id, fish_type_id, fish_count, flow, clean,
            do_level, food_size, fish_size, feed_amount, feed_unit, mortality
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	for i, entry := range entries {
		_, err := tx.ExecContext(ctx, query,
			readingID,
			refs[i].tankID,
			refs[i].fishTypeID,
			int64(entry.FishCount),
			bool(entry.Flow),
			bool(entry.Clean),
			float64(entry.DOLevel),
			string(entry.FoodSize),
			float64(entry.FishSize),
			float64(entry.FeedAmount),
			entry.FeedUnit,
			int64(entry.Mortality),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for tank %s: %w", entry.TankName, err)
		}
	}

	return nil
}
