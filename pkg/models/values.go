package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Flag is a boolean that accepts the shapes operator forms submit:
// true/false, 0/1, their string forms, "" and null (false).
type Flag bool

// UnmarshalJSON decodes any of the accepted flag representations
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		*f = false
		return nil
	}

	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	switch strings.ToLower(raw) {
	case "", "0", "false", "off", "no":
		*f = false
	case "1", "true", "on", "yes":
		*f = true
	default:
		return fmt.Errorf("invalid flag value: %s", string(data))
	}
	return nil
}

// MarshalJSON always encodes as a JSON boolean
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Scan implements sql.Scanner; stores report booleans as bool or 0/1 integers
func (f *Flag) Scan(src interface{}) error {
	if src == nil {
		*f = false
		return nil
	}
	v, err := driver.Bool.ConvertValue(src)
	if err != nil {
		return fmt.Errorf("failed to scan flag: %w", err)
	}
	*f = Flag(v.(bool))
	return nil
}

// Value implements driver.Valuer
func (f Flag) Value() (driver.Value, error) {
	return bool(f), nil
}

// Number is a float that also accepts numeric strings; "" and null decode as 0.
type Number float64

// UnmarshalJSON decodes a JSON number or numeric string
func (n *Number) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	if raw == "" {
		*n = 0
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number: %s", string(data))
	}
	*n = Number(v)
	return nil
}

// String formats the number without trailing zeros
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Count is a whole number that also accepts numeric strings; "" and null decode as 0.
type Count int64

// UnmarshalJSON decodes a JSON integer or integer string
func (c *Count) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	if raw == "" {
		*c = 0
		return nil
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*c = Count(v)
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if err != nil || v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return fmt.Errorf("invalid whole number: %s", string(data))
	}
	*c = Count(v)
	return nil
}

// Text is a string that also accepts JSON numbers (feed pellet sizes arrive both ways)
type Text string

// UnmarshalJSON decodes a JSON string or number
func (t *Text) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if string(raw) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*t = Text(strings.TrimSpace(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("invalid text value: %s", string(data))
	}
	*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// numericText returns the trimmed textual form of a JSON number or string
func numericText(data []byte) (string, error) {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		return "", nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return "", fmt.Errorf("invalid numeric string: %s", raw)
		}
		return strings.TrimSpace(unquoted), nil
	}
	return raw, nil
}
