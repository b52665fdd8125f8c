// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
)

// Defaults applied when age or daily hours are missing or unrecoverable.
const (
	DefaultAge        = 22
	DefaultHoursDaily = 2.0
)

// parseStatus describes how a free-text numeric cell was recovered.
type parseStatus int

const (
	parsedOK parseStatus = iota
	parsedMissing
	parsedUnrecoverable
)

var (
	integerRe   = regexp.MustCompile(`\d+`)
	numberRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	rangeRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|–|—|to)\s*(\d+(?:\.\d+)?)`)
	plusRe      = regexp.MustCompile(`\d+(?:\.\d+)?\s*\+`)
	moreThanRe  = regexp.MustCompile(`\b(?:more than|over|at least|above|greater than)\b`)
	lessThanRe  = regexp.MustCompile(`\b(?:less than|under|below|fewer than)\b`)
	zeroHoursRe = regexp.MustCompile(`\b(?:none|never|no time|zero|don't play|do not play)\b`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// parseAge recovers an age in years from free text such as "22 years old".
func parseAge(v dataset.Value) (int, parseStatus) {
	if v.IsNull() {
		return 0, parsedMissing
	}
	text := strings.TrimSpace(v.String())
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, parsedUnrecoverable
		}
		return int(math.Round(f)), parsedOK
	}
	m := integerRe.FindString(text)
	if m == "" {
		return 0, parsedUnrecoverable
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, parsedUnrecoverable
	}
	return n, parsedOK
}

// parseHours recovers an hour count from free text. Qualifiers adjust the
// embedded number: "more than N" or "N+" gives N+1, "less than N" gives N/2,
// and a range "N-M" gives its midpoint.
func parseHours(v dataset.Value) (float64, parseStatus) {
	if v.IsNull() {
		return 0, parsedMissing
	}
	text := strings.ToLower(strings.TrimSpace(v.String()))
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, parsedUnrecoverable
		}
		return f, parsedOK
	}

	if m := rangeRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return (lo + hi) / 2, parsedOK
	}

	m := numberRe.FindString(text)
	if m == "" {
		if zeroHoursRe.MatchString(text) {
			return 0, parsedOK
		}
		return 0, parsedUnrecoverable
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, parsedUnrecoverable
	}
	switch {
	case plusRe.MatchString(text) || moreThanRe.MatchString(text):
		return n + 1, parsedOK
	case lessThanRe.MatchString(text):
		return n / 2, parsedOK
	}
	return n, parsedOK
}

// parseFloat reads a plain number, tolerating currency symbols and
// thousands separators.
func parseFloat(v dataset.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v.IsNull() {
		return 0, false
	}
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "%", "").Replace(strings.TrimSpace(v.String()))
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseYear extracts the first four-digit year.
func parseYear(v dataset.Value) (int, bool) {
	if v.IsNull() {
		return 0, false
	}
	m := yearRe.FindString(v.String())
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

// timestampLayouts are tried in order when parsing WHOIS dates.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"02-Jan-2006",
	"2006.01.02",
	"01/02/2006",
}

func parseTimestamp(v dataset.Value) (time.Time, parseStatus) {
	if v.IsNull() {
		return time.Time{}, parsedMissing
	}
	text := strings.TrimSpace(v.String())
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), parsedOK
		}
	}
	return time.Time{}, parsedUnrecoverable
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
