// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// Merged artifact names.
const (
	MasterFileName        = "master_gaming_mental_health_dataset.csv"
	ComprehensiveFileName = "comprehensive_gaming_dataset.csv"
	WellbeingFileName     = "wellbeing_merged.csv"
	GamesFileName         = "games_merged.csv"
	DomainsFileName       = "domains_prepared.csv"
	SummaryFileName       = "merge_summary.json"
)

// ParticipantFileName returns the prepared participant table name for kind.
func ParticipantFileName(kind models.Kind) string {
	switch kind {
	case models.KindAnxiety:
		return "anxiety_participants.csv"
	case models.KindAggression:
		return "aggression_participants.csv"
	case models.KindPredictionScales:
		return "scales_participants.csv"
	default:
		return string(kind) + "_participants.csv"
	}
}

// PrepareGames stacks the game tables (steam first, then rawg) and keeps the
// last row for each (source, game_id) pair, so a re-fetched game replaces
// its earlier record.
func PrepareGames(tables []NamedTable) (*dataset.Table, int) {
	var parts []*dataset.Table
	for _, kind := range []models.Kind{models.KindSteamGames, models.KindGameMetadata} {
		if t := find(tables, kind); t != nil {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return nil, 0
	}
	return DedupeLastBy(dataset.Concat(parts...), colGameSource, colGameID)
}

// PrepareDomains keeps the latest registration row per domain.
func PrepareDomains(tables []NamedTable) (*dataset.Table, int) {
	t := find(tables, models.KindDomains)
	if t == nil {
		return nil, 0
	}
	return DedupeLastBy(t, colDomain)
}

// find returns the table of kind, or nil.
func find(tables []NamedTable, kind models.Kind) *dataset.Table {
	for _, nt := range tables {
		if nt.Kind == kind {
			return nt.Table
		}
	}
	return nil
}
