// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package merge is the third pipeline stage. It reads the cleaned tables and
produces the master table, the comprehensive participant table, the analysis
views, the title-merged wellbeing table and the prepared tables the loader
consumes.

# Master Table

Columns are chosen by frequency: participant_id, age and one hours column
(weekly, then daily, then played), gaming_preference when any table has it,
plus every column carried by two or more tables. Metadata columns (data_provenance, data_source) never count. Tables
without participant_id or with fewer than two usable columns are skipped and
reported. Rows are deduplicated by participant_id, first occurrence wins, so
input order matters: anxiety, aggression, wellbeing, prediction_scales,
steam_games, game_metadata.

# Enrichment Alignment

The comprehensive table borrows wellbeing columns (gaming_wellbeing_score
and friends) by position:

	idx, method := Align(base.Len(), wellbeing.Len(), seed)

A longer enrichment table is sampled without replacement; a shorter one is
cycled. This is not a join. Every row carries enrichment_alignment so the
approximation is visible downstream.

# Title Merge

Titles are folded by NormalizeTitle before the left join, so "Half-Life 2!"
and "half life 2" meet. Games are indexed first-wins and the wellbeing row
count never changes.
*/
package merge
