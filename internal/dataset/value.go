// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single cell: a string-backed scalar with an explicit null marker.
// The zero Value is null.
type Value struct {
	s     string
	valid bool
}

// naSpellings are the cell texts read as missing. "None" is deliberately absent:
// survey answers use it as a real response ("none" hours).
var naSpellings = map[string]struct{}{
	"":        {},
	"na":      {},
	"n/a":     {},
	"nan":     {},
	"null":    {},
	"<na>":    {},
	"#n/a":    {},
	"-nan":    {},
	"-1.#ind": {},
	"1.#qnan": {},
}

// Null returns the missing value.
func Null() Value { return Value{} }

// String returns a non-null text value.
func String(s string) Value { return Value{s: s, valid: true} }

// Float returns a numeric value. NaN and infinities become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{s: strconv.FormatFloat(f, 'f', -1, 64), valid: true}
}

// Int returns an integer value.
func Int(i int64) Value { return Value{s: strconv.FormatInt(i, 10), valid: true} }

// Bool returns "true" or "false".
func Bool(b bool) Value { return Value{s: strconv.FormatBool(b), valid: true} }

// ParseCell converts raw cell text into a Value. Blank cells and the common NA
// spellings become null.
func ParseCell(s string) Value {
	if _, na := naSpellings[strings.ToLower(strings.TrimSpace(s))]; na {
		return Value{}
	}
	return Value{s: s, valid: true}
}

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return !v.valid }

// String returns the cell text, or "" for null.
func (v Value) String() string { return v.s }

// Float parses the value as a finite number.
func (v Value) Float() (float64, bool) {
	if !v.valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int parses the value as an integer. Whole floats such as "570.0" are accepted.
func (v Value) Int() (int64, bool) {
	if !v.valid {
		return 0, false
	}
	s := strings.TrimSpace(v.s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// Bool parses true/false, yes/no and 1/0 in any case.
func (v Value) Bool() (bool, bool) {
	if !v.valid {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(v.s)) {
	case "true", "t", "yes", "y", "1", "1.0":
		return true, true
	case "false", "f", "no", "n", "0", "0.0":
		return false, true
	}
	return false, false
}

// Equal reports whether both values are null or both hold the same text.
func (v Value) Equal(o Value) bool {
	return v.valid == o.valid && v.s == o.s
}
