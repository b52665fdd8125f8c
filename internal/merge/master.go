// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"sort"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// NamedTable is a cleaned table tagged with its kind.
type NamedTable struct {
	Kind  models.Kind
	Table *dataset.Table
}

// SkippedTable records a table left out of the master merge.
type SkippedTable struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Reason string `json:"reason"`
}

// MasterStats describes the master merge.
type MasterStats struct {
	Rows              int            `json:"rows"`
	Columns           []string       `json:"columns"`
	SelectedColumns   []string       `json:"selected_columns"`
	Skipped           []SkippedTable `json:"skipped_tables,omitempty"`
	SkippedRows       int            `json:"skipped_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	SourceCounts      map[string]int `json:"source_counts"`
}

// columnFrequency counts, per column, how many tables carry it. Metadata
// columns are not counted.
func columnFrequency(tables []NamedTable) map[string]int {
	freq := make(map[string]int)
	for _, nt := range tables {
		for _, c := range nt.Table.Columns() {
			if !isMetadata(c) {
				freq[c]++
			}
		}
	}
	return freq
}

// selectMasterColumns picks participant_id and age, one hours column in
// preference order, gaming_preference when any table has it, then every
// other column present in two or more tables in sorted order.
func selectMasterColumns(tables []NamedTable) []string {
	all := make([]*dataset.Table, len(tables))
	for i, nt := range tables {
		all[i] = nt.Table
	}

	selected := []string{colParticipantID, colAge}
	if hours := firstPresent(hoursPreference, all...); hours != "" {
		selected = append(selected, hours)
	}
	if firstPresent([]string{colPreference}, all...) != "" {
		selected = append(selected, colPreference)
	}
	inCore := make(map[string]bool, len(selected))
	for _, c := range selected {
		inCore[c] = true
	}

	var common []string
	for col, n := range columnFrequency(tables) {
		if n >= 2 && !inCore[col] {
			common = append(common, col)
		}
	}
	sort.Strings(common)
	return append(selected, common...)
}

// MergeMaster combines the tables over their shared columns and keeps the
// first row for each participant_id. A table contributes only when it has
// participant_id and at least two selected columns.
func MergeMaster(tables []NamedTable) (*dataset.Table, MasterStats) {
	selected := selectMasterColumns(tables)
	stats := MasterStats{SelectedColumns: selected, SourceCounts: make(map[string]int)}

	var parts []*dataset.Table
	for _, nt := range tables {
		var usable []string
		for _, c := range selected {
			if nt.Table.Has(c) {
				usable = append(usable, c)
			}
		}
		switch {
		case !nt.Table.Has(colParticipantID):
			stats.Skipped = append(stats.Skipped, SkippedTable{Name: string(nt.Kind), Rows: nt.Table.Len(), Reason: "no participant_id column"})
			stats.SkippedRows += nt.Table.Len()
			continue
		case len(usable) < 2:
			stats.Skipped = append(stats.Skipped, SkippedTable{Name: string(nt.Kind), Rows: nt.Table.Len(), Reason: "fewer than two usable columns"})
			stats.SkippedRows += nt.Table.Len()
			continue
		}

		cols := usable
		if nt.Table.Has(ColProvenance) {
			cols = append(cols, ColProvenance)
		}
		part := nt.Table.Select(cols...).WithConstant(ColDataSource, dataset.String(string(nt.Kind)))
		parts = append(parts, part)
	}

	// Column order follows the selection, then the metadata columns.
	var order []string
	for _, c := range append(selected, ColDataSource, ColProvenance) {
		for _, p := range parts {
			if p.Has(c) {
				order = append(order, c)
				break
			}
		}
	}

	master := dataset.ConcatColumns(order, parts...)
	master, stats.DuplicatesRemoved = DedupeBy(master, colParticipantID)

	stats.Rows = master.Len()
	stats.Columns = master.Columns()
	for _, v := range master.Column(ColDataSource) {
		stats.SourceCounts[v.String()]++
	}
	return master, stats
}
