// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"github.com/tomtom215/respawn/internal/dataset"
)

// Canonical merge columns.
const (
	colParticipantID = "participant_id"
	colAge           = "age"
	colHoursWeekly   = "gaming_hours_weekly"
	colHoursDaily    = "gaming_hours_daily"
	colHoursPlayed   = "hours_played"
	colPreference    = "gaming_preference"
	colSessionID     = "session_id"
	colGameTitle     = "game_title"
	colTitle         = "title"
	colGameID        = "game_id"
	colGameSource    = "source"
	colDomain        = "domain"

	// ColProvenance and ColDataSource are metadata: they never count as
	// usable columns in merge decisions.
	ColProvenance    = "data_provenance"
	ColDataSource    = "data_source"
	ColSourceDataset = "source_dataset"
	ColAlignment     = "enrichment_alignment"
)

// hoursPreference is the order in which one hours column is chosen.
var hoursPreference = []string{colHoursWeekly, colHoursDaily, colHoursPlayed}

// columnSynonyms folds known column spellings onto canonical names.
var columnSynonyms = map[string]string{
	"gaming_hours_per_week": colHoursWeekly,
	"weekly_gaming_hours":   colHoursWeekly,
	"hours_per_week":        colHoursWeekly,
	"daily_gaming_hours":    colHoursDaily,
	"hours_per_day":         colHoursDaily,
	"id":                    colParticipantID,
	"user_id":               colParticipantID,
	"subject_id":            colParticipantID,
	"respondent_id":         colParticipantID,
	"participant_age":       colAge,
	"user_age":              colAge,
	"respondent_age":        colAge,
	"game_preference":       colPreference,
	"preferred_genre":       colPreference,
	"favorite_genre":        colPreference,
	"game_type_preference":  colPreference,
}

// Standardize renames synonym columns to their canonical names. A synonym is
// left alone when the canonical column already exists.
func Standardize(tbl *dataset.Table) *dataset.Table {
	mapping := make(map[string]string)
	for _, c := range tbl.Columns() {
		if to, ok := columnSynonyms[c]; ok {
			mapping[c] = to
		}
	}
	if len(mapping) == 0 {
		return tbl
	}
	return tbl.Rename(mapping)
}

func isMetadata(col string) bool {
	switch col {
	case ColProvenance, ColDataSource, ColSourceDataset, ColAlignment:
		return true
	}
	return false
}

// DedupeBy keeps the first row for each key built from cols. Rows whose key
// columns are all null are kept. It returns the deduplicated table and the
// number of rows removed.
func DedupeBy(tbl *dataset.Table, cols ...string) (*dataset.Table, int) {
	seen := make(map[string]bool, tbl.Len())
	removed := 0
	out := tbl.Filter(func(i int, _ dataset.Row) bool {
		key, ok := rowKey(tbl, i, cols)
		if !ok {
			return true
		}
		if seen[key] {
			removed++
			return false
		}
		seen[key] = true
		return true
	})
	return out, removed
}

// DedupeLastBy keeps the last row for each key built from cols, in the
// position of that last row. It mirrors replace-on-conflict loading, where a
// later write for the same key overwrites an earlier one.
func DedupeLastBy(tbl *dataset.Table, cols ...string) (*dataset.Table, int) {
	last := make(map[string]int, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		if key, ok := rowKey(tbl, i, cols); ok {
			last[key] = i
		}
	}
	removed := 0
	out := tbl.Filter(func(i int, _ dataset.Row) bool {
		key, ok := rowKey(tbl, i, cols)
		if !ok || last[key] == i {
			return true
		}
		removed++
		return false
	})
	return out, removed
}

func rowKey(tbl *dataset.Table, i int, cols []string) (string, bool) {
	key := ""
	present := false
	for _, c := range cols {
		v := tbl.Get(i, c)
		if !v.IsNull() {
			present = true
		}
		key += v.String() + "\x1f"
	}
	return key, present
}

// firstPresent returns the first candidate column found in any table.
func firstPresent(candidates []string, tables ...*dataset.Table) string {
	for _, c := range candidates {
		for _, t := range tables {
			if t.Has(c) {
				return c
			}
		}
	}
	return ""
}
