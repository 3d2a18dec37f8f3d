package models

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate is a single latitude or longitude value that may be unset.
// The zero value is unset.
type Coordinate struct {
	value float64 // value is meaningful only when valid is true.
	valid bool    // valid reports whether the coordinate holds a decimal.
}

// NewCoordinate returns a set coordinate. NaN and infinities yield an unset coordinate.
func NewCoordinate(value float64) Coordinate {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Coordinate{}
	}

	return Coordinate{value: value, valid: true}
}

// ParseCoordinate parses a decimal number, accepting a comma as decimal separator.
// Anything that is not a finite decimal yields an unset coordinate.
func ParseCoordinate(raw string) Coordinate {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	// ParseFloat also accepts hexadecimal mantissas, which are not decimals.
	if raw == "" || strings.ContainsAny(raw, "xX_") {
		return Coordinate{}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Coordinate{}
	}

	return NewCoordinate(value)
}

// Float64 returns the stored value and whether it is set.
func (c Coordinate) Float64() (float64, bool) {
	return c.value, c.valid
}

// IsSet reports whether the coordinate holds a value.
func (c Coordinate) IsSet() bool {
	return c.valid
}

// String renders the value in its shortest exact form, or "" when unset.
func (c Coordinate) String() string {
	if !c.valid {
		return ""
	}

	return strconv.FormatFloat(c.value, 'f', -1, 64)
}
