package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// FeedUnitLitres is the default feed unit for a tank snapshot
	FeedUnitLitres = "L"
	// FeedUnitGrams is the alternative feed unit
	FeedUnitGrams = "gm"

	// DefaultFoodSize is stored when a snapshot omits its food size
	DefaultFoodSize = "0"

	// DefaultPageSize is the number of readings per page
	DefaultPageSize = 10
	// MaxPageSize bounds page_size on list queries
	MaxPageSize = 1000
	// MaxPage keeps (page-1)*page_size within range
	MaxPage = 1000000

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Reading represents one logged snapshot of facility-wide equipment state
type Reading struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"timestamp"`

	// HeaderPressureIn is the composite "south / north" header pressure
	HeaderPressureIn    string  `json:"header_pressure_in"`
	HeaderPressureSouth *Number `json:"header_pressure_in_south,omitempty"`
	HeaderPressureNorth *Number `json:"header_pressure_in_north,omitempty"`

	Pump1Active           Flag `json:"pump_1_active"`
	Pump2Active           Flag `json:"pump_2_active"`
	Pump3Active           Flag `json:"pump_3_active"`
	Pump4Active           Flag `json:"pump_4_active"`
	EastPumpActive        Flag `json:"east_pump_active"`
	EastBlowerNorthActive Flag `json:"east_blower_north_active"`
	WestBlowerActive      Flag `json:"west_blower_active"`
	EastBlowerSouthActive Flag `json:"east_blower_south_active"`

	EastWellPressure         Number `json:"east_well_pressure"`
	WaterTemperature         Number `json:"water_temperature"`
	EastBlowerHeaderPressure Number `json:"east_blower_header_pressure"`
	WestBlowerHeaderPressure Number `json:"west_blower_header_pressure"`

	AerationTankOverflow  Flag   `json:"aeration_tank_overflow"`
	DieselRoomTemperature Number `json:"diesel_room_temperature"`
	BatteryVoltage        Number `json:"battery_voltage"`
	BlockHeaterActive     Flag   `json:"block_heater_active"`
	GeneratorAutostart    Flag   `json:"generator_autostart"`
	GeneratorHours        Count  `json:"generator_hours"`
	GeneratorMinutes      Count  `json:"generator_minutes"`
	FuelTankLevel         Number `json:"fuel_tank_level"`
	TransferSwitchActive  Flag   `json:"transfer_switch_active"`
	GeneratorAtRest       Flag   `json:"generator_at_rest"`
	PLCActive             Flag   `json:"plc_active"`
	AlarmActivated        Flag   `json:"alarm_activated"`

	OperatorName string `json:"operator_name"`

	TankSnapshots []TankSnapshot `json:"tank_snapshots"`
}

// TankEntry is one tank's husbandry observation as submitted with a reading
type TankEntry struct {
	TankName     string `json:"tank_name"`
	FishTypeName string `json:"fish_type_name"`
	FishCount    Count  `json:"number_of_fishes"`
	Flow         Flag   `json:"flow"`
	Clean        Flag   `json:"clean"`
	DOLevel      Number `json:"do_level"`
	FoodSize     Text   `json:"food_size"`
	FishSize     Number `json:"fish_size"`
	FeedAmount   Number `json:"diet"`
	FeedUnit     string `json:"diet_type"`
	Mortality    Count  `json:"mort"`
}

// TankSnapshot is a persisted tank entry with its resolved references
type TankSnapshot struct {
	ID         int64 `json:"snapshot_id"`
	ReadingID  int64 `json:"reading_id"`
	TankID     int64 `json:"tank_id"`
	FishTypeID int64 `json:"fish_type_id"`
	TankEntry
}

// ReadingPayload is the write-side request: reading fields plus its tank entries
type ReadingPayload struct {
	ReadingID Count       `json:"plant_reading_id,omitempty"`
	Reading   Reading     `json:"plant_reading"`
	Tanks     []TankEntry `json:"tanks"`
}

// SnapshotPrefill holds the husbandry fields carried forward from a tank's last entry
type SnapshotPrefill struct {
	TankID       int64  `json:"tank_id"`
	FishCount    Count  `json:"number_of_fishes"`
	FishTypeName string `json:"fish_type_name"`
	FoodSize     Text   `json:"food_size"`
	FishSize     Number `json:"fish_size"`
}

// Normalize validates the payload once at the boundary and applies defaults
func (p *ReadingPayload) Normalize() error {
	r := &p.Reading
	r.OperatorName = strings.TrimSpace(r.OperatorName)
	r.HeaderPressureIn = strings.TrimSpace(r.HeaderPressureIn)

	if r.HeaderPressureSouth != nil || r.HeaderPressureNorth != nil {
		r.HeaderPressureIn = JoinHeaderPressure(r.HeaderPressureSouth, r.HeaderPressureNorth)
	}

	if r.GeneratorMinutes < 0 || r.GeneratorMinutes > 59 {
		return fmt.Errorf("generator_minutes must be between 0 and 59, got %d", r.GeneratorMinutes)
	}
	if r.GeneratorHours < 0 {
		return fmt.Errorf("generator_hours must not be negative, got %d", r.GeneratorHours)
	}

	for i := range p.Tanks {
		if err := p.Tanks[i].Normalize(); err != nil {
			return fmt.Errorf("tank %d: %w", i+1, err)
		}
	}

	return nil
}

// Normalize trims names and fills snapshot defaults
func (e *TankEntry) Normalize() error {
	e.TankName = strings.TrimSpace(e.TankName)
	e.FishTypeName = strings.TrimSpace(e.FishTypeName)

	if e.TankName == "" {
		return errors.New("tank_name is required")
	}
	if e.FishTypeName == "" {
		return errors.New("fish_type_name is required")
	}

	if e.FoodSize == "" {
		e.FoodSize = DefaultFoodSize
	}

	switch strings.TrimSpace(e.FeedUnit) {
	case "":
		e.FeedUnit = FeedUnitLitres
	case FeedUnitLitres, "l":
		e.FeedUnit = FeedUnitLitres
	case FeedUnitGrams, "g", "GM":
		e.FeedUnit = FeedUnitGrams
	default:
		return fmt.Errorf("invalid diet_type: %s (valid: %s, %s)", e.FeedUnit, FeedUnitLitres, FeedUnitGrams)
	}

	if e.FishCount < 0 {
		return fmt.Errorf("number_of_fishes must not be negative, got %d", e.FishCount)
	}
	if e.Mortality < 0 {
		return fmt.Errorf("mort must not be negative, got %d", e.Mortality)
	}

	return nil
}

// JoinHeaderPressure builds the composite "south / north" value
func JoinHeaderPressure(south, north *Number) string {
	part := func(n *Number) string {
		if n == nil {
			return ""
		}
		return n.String()
	}
	return part(south) + " / " + part(north)
}

// SplitHeaderPressure parses the composite header pressure into its two halves.
// Halves that are missing or not numeric come back nil.
func SplitHeaderPressure(composite string) (south, north *Number) {
	if strings.TrimSpace(composite) == "" {
		return nil, nil
	}

	parts := strings.SplitN(composite, "/", 2)
	parse := func(s string) *Number {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		n := Number(v)
		return &n
	}

	south = parse(parts[0])
	if len(parts) > 1 {
		north = parse(parts[1])
	}
	return south, north
}

// PageQuery selects one page of readings, optionally limited to a calendar month or year
type PageQuery struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Month    int `json:"month,omitempty"`
	Year     int `json:"year,omitempty"`
}

// Validate checks if the page query is valid
func (q *PageQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("page must be greater than 0")
	}

	if q.Page > MaxPage {
		return fmt.Errorf("page must not exceed %d", MaxPage)
	}

	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
	}

	if q.Month < 0 || q.Month > 12 {
		return fmt.Errorf("invalid month: %d (valid: 1-12)", q.Month)
	}

	if q.Year != 0 && (q.Year < 1970 || q.Year > 9999) {
		return fmt.Errorf("invalid year: %d", q.Year)
	}

	if q.Month != 0 && q.Year == 0 {
		return fmt.Errorf("month filter requires a year")
	}

	return nil
}

// Window returns the half-open [from, to) range selected by the month/year filter.
// ok is false when no filter is set.
func (q PageQuery) Window(loc *time.Location) (from, to time.Time, ok bool) {
	if q.Year == 0 {
		return time.Time{}, time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if q.Month == 0 {
		from = time.Date(q.Year, time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0), true
	}

	from = time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0), true
}

// DateRangeQuery selects all readings in an inclusive time range
type DateRangeQuery struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Order string    `json:"order"`
}

// Validate checks the range and normalizes the sort order
func (q *DateRangeQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}

	if q.End.Before(q.Start) {
		return fmt.Errorf("end must not be before start")
	}

	switch strings.ToUpper(strings.TrimSpace(q.Order)) {
	case "", OrderDesc:
		q.Order = OrderDesc
	case OrderAsc:
		q.Order = OrderAsc
	default:
		return fmt.Errorf("invalid order: %s (valid: ASC, DESC)", q.Order)
	}

	return nil
}

// ReadingsPage is the response shape of a paginated listing
type ReadingsPage struct {
	Data       []Reading `json:"plant_readings"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	HasMore    bool      `json:"has_more"`
}
