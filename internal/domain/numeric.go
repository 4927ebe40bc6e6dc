package domain

import (
	"strconv"
	"strings"
)

// ToFloat coerces raw feed text into a float, returning nil for anything
// unparseable. This is the boundary that absorbs malformed upstream payload
// values; it never returns an error.
func ToFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ToInt coerces raw feed text into an int, returning nil on failure.
// Used for forecast period indices.
func ToInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
