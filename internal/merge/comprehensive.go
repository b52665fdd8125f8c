// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"fmt"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// enrichmentColumns maps comprehensive-table columns onto their wellbeing
// source columns, in output order.
var enrichmentColumns = []struct {
	target, source string
}{
	{"gaming_wellbeing_score", "wellbeing_score"},
	{"gaming_stress_level", "stress_level"},
	{"gaming_social_connection_score", "social_connection_score"},
	{"gaming_achievement_satisfaction", "achievement_satisfaction"},
	{"gaming_hours_played", "hours_played"},
}

// AlignmentStats records how enrichment rows were attached.
type AlignmentStats struct {
	Method         AlignmentMethod `json:"method"`
	BaseRows       int             `json:"base_rows"`
	EnrichmentRows int             `json:"enrichment_rows"`
	Seed           int64           `json:"seed"`
	Note           string          `json:"note"`
}

// ComprehensiveStats describes the comprehensive participant table.
type ComprehensiveStats struct {
	Rows              int            `json:"rows"`
	Columns           int            `json:"columns"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	Alignment         AlignmentStats `json:"alignment"`
}

const alignmentNote = "enrichment columns are aligned by position, not joined by participant; treat them as approximate"

// BuildComprehensive unions the participant tables over the superset of
// their columns, keeps the first row per participant_id and attaches the
// wellbeing enrichment columns by length alignment. wellbeing may be nil.
func BuildComprehensive(participants []NamedTable, wellbeing *dataset.Table, seed int64) (*dataset.Table, ComprehensiveStats, error) {
	parts := make([]*dataset.Table, 0, len(participants))
	for _, nt := range participants {
		parts = append(parts, nt.Table.WithConstant(ColDataSource, dataset.String(string(nt.Kind))))
	}
	base := dataset.Concat(parts...)
	base, removed := DedupeBy(base, colParticipantID)

	stats := ComprehensiveStats{DuplicatesRemoved: removed}
	stats.Alignment = AlignmentStats{BaseRows: base.Len(), Seed: seed, Method: AlignmentNone, Note: alignmentNote}
	if wellbeing != nil {
		stats.Alignment.EnrichmentRows = wellbeing.Len()
	}

	var idx []int
	if wellbeing != nil {
		idx, stats.Alignment.Method = Align(base.Len(), wellbeing.Len(), seed)
	}

	out := base
	for _, ec := range enrichmentColumns {
		vals := make([]dataset.Value, base.Len())
		if idx != nil {
			for i, j := range idx {
				vals[i] = wellbeing.Get(j, ec.source)
			}
		}
		var err error
		if out, err = out.WithColumn(ec.target, vals); err != nil {
			return nil, stats, fmt.Errorf("enrich %s: %w", ec.target, err)
		}
	}

	flag := dataset.Null()
	if stats.Alignment.Method != AlignmentNone {
		flag = dataset.String(string(stats.Alignment.Method))
	}
	out = out.WithConstant(ColAlignment, flag)

	stats.Rows = out.Len()
	stats.Columns = out.Width()
	return out, stats, nil
}

// participantTables returns the participant-survey tables in pipeline order.
func participantTables(tables []NamedTable) []NamedTable {
	var out []NamedTable
	for _, nt := range tables {
		if nt.Kind.Entity() == models.EntityParticipant {
			out = append(out, nt)
		}
	}
	return out
}
