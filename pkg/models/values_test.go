package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Flag
		expectError bool
	}{
		{input: `true`, expected: true},
		{input: `false`, expected: false},
		{input: `1`, expected: true},
		{input: `0`, expected: false},
		{input: `"1"`, expected: true},
		{input: `"true"`, expected: true},
		{input: `"0"`, expected: false},
		{input: `""`, expected: false},
		{input: `null`, expected: false},
		{input: `2`, expectError: true},
		{input: `"maybe"`, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tc.input), &f)
			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if f != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, f)
			}
		})
	}
}

func TestFlag_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		On  Flag `json:"on"`
		Off Flag `json:"off"`
	}{On: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != `{"on":true,"off":false}` {
		t.Errorf("Expected booleans in JSON, got %s", data)
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Number
		expectError bool
	}{
		{input: `12.5`, expected: 12.5},
		{input: `"12.5"`, expected: 12.5},
		{input: `" 7 "`, expected: 7},
		{input: `""`, expected: 0},
		{input: `null`, expected: 0},
		{input: `"abc"`, expectError: true},
		{input: `"NaN"`, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tc.input), &n)
			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if n != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, n)
			}
		})
	}
}

func TestCount_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Count
		expectError bool
	}{
		{input: `42`, expected: 42},
		{input: `"42"`, expected: 42},
		{input: `42.0`, expected: 42},
		{input: `""`, expected: 0},
		{input: `42.5`, expectError: true},
		{input: `"many"`, expectError: true},
		{input: `1e19`, expectError: true},
		{input: `"-1e19"`, expectError: true},
		{input: `1e18`, expected: 1000000000000000000},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var c Count
			err := json.Unmarshal([]byte(tc.input), &c)
			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, c)
			}
		})
	}
}

func TestCount_UnmarshalJSON_OutOfRange(t *testing.T) {
	var c Count
	err := json.Unmarshal([]byte(`1e19`), &c)
	if err == nil || !strings.Contains(err.Error(), "invalid whole number") {
		t.Errorf("Expected an invalid whole number error, got %v", err)
	}
}

func TestText_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": "#2 MM", "b": 1.5, "c": null}`), &payload); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.A != "#2 MM" || payload.B != "1.5" || payload.C != "" {
		t.Errorf("Unexpected decoded text values: %+v", payload)
	}
}

func TestResult_Err(t *testing.T) {
	if err := Succeeded("ok", 1).Err(); err != nil {
		t.Errorf("Expected nil error for success, got %v", err)
	}

	err := Failed(ReasonConstraint, "duplicate name").Err()
	if err == nil {
		t.Fatal("Expected error for failure")
	}
	if err.Error() != "constraint: duplicate name" {
		t.Errorf("Unexpected error text: %s", err.Error())
	}
}

func TestFlag_Scan(t *testing.T) {
	testCases := []struct {
		src      interface{}
		expected Flag
	}{
		{src: int64(1), expected: true},
		{src: int64(0), expected: false},
		{src: true, expected: true},
		{src: "1", expected: true},
		{src: nil, expected: false},
	}

	for _, tc := range testCases {
		f := Flag(!tc.expected)
		if err := f.Scan(tc.src); err != nil {
			t.Fatalf("Unexpected error scanning %v: %v", tc.src, err)
		}
		if f != tc.expected {
			t.Errorf("Expected %v for %v, got %v", tc.expected, tc.src, f)
		}
	}

	var f Flag
	if err := f.Scan(int64(7)); err == nil {
		t.Error("Expected error scanning 7 into a flag")
	}
}
