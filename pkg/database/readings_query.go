package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

var readingSelect = "SELECT id, recorded_at, " + strings.Join(readingColumns, ", ") + " FROM readings"

func scanReading(row rowScanner) (models.Reading, error) {
	var r models.Reading
	err := row.Scan(
		&r.ID,
		&r.RecordedAt,
		&r.HeaderPressureIn,
		&r.Pump1Active,
		&r.Pump2Active,
		&r.Pump3Active,
		&r.Pump4Active,
		&r.EastPumpActive,
		&r.EastBlowerNorthActive,
		&r.WestBlowerActive,
		&r.EastBlowerSouthActive,
		&r.EastWellPressure,
		&r.WaterTemperature,
		&r.EastBlowerHeaderPressure,
		&r.WestBlowerHeaderPressure,
		&r.AerationTankOverflow,
		&r.DieselRoomTemperature,
		&r.BatteryVoltage,
		&r.BlockHeaterActive,
		&r.GeneratorAutostart,
		&r.GeneratorHours,
		&r.GeneratorMinutes,
		&r.FuelTankLevel,
		&r.TransferSwitchActive,
		&r.GeneratorAtRest,
		&r.PLCActive,
		&r.AlarmActivated,
		&r.OperatorName,
	)
	r.TankSnapshots = []models.TankSnapshot{}
	return r, err
}

// loadReadings runs a reading query and attaches each reading's snapshots
func (dm *DatabaseManager) loadReadings(ctx context.Context, query string, args ...interface{}) ([]models.Reading, error) {
	readings, err := dm.queryReadings(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := dm.attachSnapshots(ctx, readings); err != nil {
		return nil, err
	}

	return readings, nil
}

// queryReadings must finish with its rows before another statement can use the connection
func (dm *DatabaseManager) queryReadings(ctx context.Context, query string, args ...interface{}) ([]models.Reading, error) {
	rows, err := dm.QueryWithHealthCheck(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := []models.Reading{}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}

	return readings, rows.Err()
}

func (dm *DatabaseManager) attachSnapshots(ctx context.Context, readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	index := make(map[int64]int, len(readings))
	ids := make([]interface{}, len(readings))
	for i, r := range readings {
		index[r.ID] = i
		ids[i] = r.ID
	}

	query := fmt.Sprintf(`
        SELECT ts.id, ts.reading_id, ts.tank_id, t.name, ts.fish_type_id, f.name,
               ts.fish_count, ts.flow, ts.clean, ts.do_level, ts.food_size,
               ts.fish_size, ts.feed_amount, ts.feed_unit, ts.mortality
        FROM tank_snapshots ts
        JOIN tanks t ON t.id = ts.tank_id
        JOIN fish_types f ON f.id = ts.fish_type_id
        WHERE ts.reading_id IN (%s)
        ORDER BY ts.reading_id, ts.id
    `, placeholders(1, len(ids)))

	rows, err := dm.QueryWithHealthCheck(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("failed to query tank snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.TankSnapshot
		err := rows.Scan(
			&s.ID,
			&s.ReadingID,
			&s.TankID,
			&s.TankName,
			&s.FishTypeID,
			&s.FishTypeName,
			&s.FishCount,
			&s.Flow,
			&s.Clean,
			&s.DOLevel,
			&s.FoodSize,
			&s.FishSize,
			&s.FeedAmount,
			&s.FeedUnit,
			&s.Mortality,
		)
		if err != nil {
			return fmt.Errorf("failed to scan tank snapshot: %w", err)
		}

		i := index[s.ReadingID]
		readings[i].TankSnapshots = append(readings[i].TankSnapshots, s)
	}

	return rows.Err()
}

// pageFilter returns the WHERE clause for a month/year filter and its arguments
func (dm *DatabaseManager) pageFilter(q models.PageQuery) (string, []interface{}) {
	from, to, ok := q.Window(dm.location)
	if !ok {
		return "", nil
	}
	return " WHERE recorded_at >= $1 AND recorded_at < $2", []interface{}{queryTime(from), queryTime(to)}
}

// GetReadingsPage returns one page of readings, newest first, with their snapshots
func (dm *DatabaseManager) GetReadingsPage(ctx context.Context, q models.PageQuery) ([]models.Reading, error) {
	if err := q.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	where, args := dm.pageFilter(q)
	n := len(args)
	query := fmt.Sprintf("%s%s ORDER BY recorded_at DESC, id DESC LIMIT $%d OFFSET $%d", readingSelect, where, n+1, n+2)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	return dm.loadReadings(ctx, query, args...)
}

// CountReadings returns the number of readings matching the month/year filter
func (dm *DatabaseManager) CountReadings(ctx context.Context, q models.PageQuery) (int64, error) {
	where, args := dm.pageFilter(q)

	var total int64
	if err := dm.QueryRowWithHealthCheck(ctx, "SELECT COUNT(*) FROM readings"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return total, nil
}

// GetTotalPages returns ceil(count / page size); 0 when nothing matches
func (dm *DatabaseManager) GetTotalPages(ctx context.Context, q models.PageQuery) (int, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if err := q.Validate(); err != nil {
		return 0, invalidInput("%v", err)
	}

	total, err := dm.CountReadings(ctx, q)
	if err != nil {
		return 0, err
	}

	return int((total + int64(q.PageSize) - 1) / int64(q.PageSize)), nil
}

// GetReadingsByDateRange returns every reading recorded in [start, end]
func (dm *DatabaseManager) GetReadingsByDateRange(ctx context.Context, q models.DateRangeQuery) ([]models.Reading, error) {
	if err := q.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	// q.Order is ASC or DESC after Validate
	query := fmt.Sprintf("%s WHERE recorded_at >= $1 AND recorded_at <= $2 ORDER BY recorded_at %s, id %s",
		readingSelect, q.Order, q.Order)

	return dm.loadReadings(ctx, query, queryTime(q.Start), queryTime(q.End))
}

// GetReadingByID returns one reading with its snapshots and split header pressure
func (dm *DatabaseManager) GetReadingByID(ctx context.Context, id int64) (*models.Reading, error) {
	readings, err := dm.loadReadings(ctx, readingSelect+" WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrReadingNotFound
	}

	r := readings[0]
	r.HeaderPressureSouth, r.HeaderPressureNorth = models.SplitHeaderPressure(r.HeaderPressureIn)
	return &r, nil
}

// GetLastWeekSnapshot returns the husbandry fields of the tank's most recent
// snapshot recorded at or before asOf (now when nil). A tank without history
// gets an empty prefill.
func (dm *DatabaseManager) GetLastWeekSnapshot(ctx context.Context, tankID int64, asOf *time.Time) (*models.SnapshotPrefill, error) {
	if _, err := dm.GetTankByID(ctx, tankID); err != nil {
		return nil, err
	}

	cutoff := dm.now()
	if asOf != nil && !asOf.IsZero() {
		cutoff = *asOf
	}

	query := `
        SELECT f.name, ts.fish_count, ts.food_size, ts.fish_size
        FROM tank_snapshots ts
        JOIN readings r ON r.id = ts.reading_id
        JOIN fish_types f ON f.id = ts.fish_type_id
        WHERE ts.tank_id = $1 AND r.recorded_at <= $2
        ORDER BY r.recorded_at DESC, r.id DESC, ts.id DESC
        LIMIT 1
    `

	prefill := &models.SnapshotPrefill{TankID: tankID}
	err := dm.QueryRowWithHealthCheck(ctx, query, tankID, queryTime(cutoff)).
		Scan(&prefill.FishTypeName, &prefill.FishCount, &prefill.FoodSize, &prefill.FishSize)
	if errors.Is(err, sql.ErrNoRows) {
		return prefill, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last snapshot of tank %d: %w", tankID, err)
	}

	return prefill, nil
}

// GetTodaysReadings returns the readings recorded since local midnight, newest first
func (dm *DatabaseManager) GetTodaysReadings(ctx context.Context) ([]models.Reading, error) {
	now := dm.now().In(dm.location)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, dm.location)
	to := from.AddDate(0, 0, 1)

	query := readingSelect + " WHERE recorded_at >= $1 AND recorded_at < $2 ORDER BY recorded_at DESC, id DESC"
	return dm.loadReadings(ctx, query, queryTime(from), queryTime(to))
}

// GetFirstRecordYear returns the year of the earliest reading, or the current year when there is none
func (dm *DatabaseManager) GetFirstRecordYear(ctx context.Context) (int, error) {
	var first time.Time
	err := dm.QueryRowWithHealthCheck(ctx, "SELECT recorded_at FROM readings ORDER BY recorded_at ASC, id ASC LIMIT 1").Scan(&first)
	if errors.Is(err, sql.ErrNoRows) {
		return dm.now().In(dm.location).Year(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query first record year: %w", err)
	}

	return first.In(dm.location).Year(), nil
}
