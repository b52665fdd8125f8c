// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package ingest

import (
	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// candidateFiles lists the source filenames probed for each kind, in priority
// order. The first file that exists is used; later ones are never consulted.
var candidateFiles = map[models.Kind][]string{
	models.KindAnxiety: {
		"gaming_anxiety.csv",
		"gaming_anxiety_raw.csv",
		"anxiety_gaming.csv",
		"gaming_and_anxiety.csv",
		"GamingStudy_data.csv",
		"gaming_anxiety.xlsx",
	},
	models.KindAggression: {
		"gaming_aggression.csv",
		"gaming_aggression_raw.csv",
		"aggression_gaming.csv",
		"gaming_and_aggression.csv",
		"gaming_aggression.xlsx",
	},
	models.KindPredictionScales: {
		"gaming_7scales.csv",
		"gaming_7scales_raw.csv",
		"gaming_prediction_scales.csv",
		"7_scales_gaming.csv",
		"gaming_7scales.xlsx",
	},
	models.KindWellbeing: {
		"games_wellbeing_steam.csv",
		"games_wellbeing_steam_raw.csv",
		"steam_wellbeing.csv",
		"wellbeing_steam_games.csv",
	},
	models.KindSteamGames: {
		"steam_games.csv",
		"steam_games_raw.csv",
		"steam_data.csv",
		"games_steam.csv",
	},
	models.KindGameMetadata: {
		"rawg_games.csv",
		"rawg_games_raw.csv",
		"game_metadata.csv",
	},
	models.KindDomains: {
		"whois_gaming_domains.csv",
		"whois_domains.csv",
	},
}

// Candidates returns the source filenames probed for kind.
func Candidates(kind models.Kind) []string {
	names := candidateFiles[kind]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// encodingsFor returns the decode order for kind. Only the survey exports,
// which come from spreadsheet tools, get the legacy code-page fallbacks.
func encodingsFor(kind models.Kind) []dataset.Encoding {
	switch kind {
	case models.KindAnxiety, models.KindAggression, models.KindPredictionScales:
		return dataset.FallbackEncodings()
	default:
		return []dataset.Encoding{dataset.UTF8}
	}
}
