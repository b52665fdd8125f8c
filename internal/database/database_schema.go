// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
database_schema.go - Database Schema Management

Tables:
  - games: one row per (source, game_id), replaced on conflict
  - domain_registrations: one row per domain, category checked against the closed set
  - comprehensive_gaming_data: one row per participant_id, replaced on conflict
  - anxiety_observations, aggression_observations, scale_observations,
    wellbeing_observations: append-only, stamped with run_id and loaded_at
  - view_<name>: analysis snapshots, created per load (see snapshot.go)

Read-time views:
  - gaming_behavior_analysis: gaming intensity and age bands per participant
  - psychology_analysis: Big Five wellness and addiction risk
  - wellbeing_summary: per-title averages for titles with five or more sessions
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/merge"
	"github.com/tomtom215/respawn/internal/models"
)

// sqlType is the storage type of a loaded column.
type sqlType string

const (
	typeText      sqlType = "VARCHAR"
	typeInt       sqlType = "INTEGER"
	typeBigInt    sqlType = "BIGINT"
	typeDouble    sqlType = "DOUBLE"
	typeBool      sqlType = "BOOLEAN"
	typeTimestamp sqlType = "TIMESTAMP"
)

type column struct {
	name string
	typ  sqlType
}

// tableSpec describes one loaded table and the merged artifact it reads.
type tableSpec struct {
	name    string
	file    string
	columns []column
	// key is the primary key. Keyed tables use INSERT OR REPLACE after
	// last-wins deduplication; tables without a key are append-only and get
	// run_id and loaded_at.
	key    []string
	checks []string
}

func (t tableSpec) appendOnly() bool { return len(t.key) == 0 }

func (t tableSpec) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

func cols(typ sqlType, names ...string) []column {
	out := make([]column, len(names))
	for i, n := range names {
		out[i] = column{name: n, typ: typ}
	}
	return out
}

func concatColumns(groups ...[]column) []column {
	var out []column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// participantCore are the columns every participant table shares.
var participantCore = concatColumns(
	cols(typeText, "participant_id"),
	cols(typeInt, "age"),
	cols(typeText, "gender"),
	cols(typeDouble, "gaming_hours_daily", "gaming_hours_weekly"),
	cols(typeText, "gaming_preference"),
)

var participantDerived = concatColumns(
	cols(typeText, "age_group", "behavior_category"),
	cols(typeDouble, "wellness_score"),
)

var enrichment = concatColumns(
	cols(typeDouble,
		"gaming_wellbeing_score",
		"gaming_stress_level",
		"gaming_social_connection_score",
		"gaming_achievement_satisfaction",
		"gaming_hours_played"),
	cols(typeText, merge.ColAlignment),
)

var provenance = cols(typeText, merge.ColProvenance)

// tableSpecs lists the loaded tables in load order.
func tableSpecs() []tableSpec {
	scales := append(models.PredictionSubscales(), models.BigFiveTraits()...)
	return []tableSpec{
		{
			name: "games",
			file: merge.GamesFileName,
			columns: concatColumns(
				cols(typeText, "source"),
				cols(typeBigInt, "game_id"),
				cols(typeText, "title", "genres", "developer"),
				cols(typeDouble, "price", "rating"),
				cols(typeBigInt, "review_count"),
				cols(typeInt, "release_year"),
				cols(typeBool, "is_multiplayer", "has_microtransactions"),
				provenance,
			),
			key: []string{"source", "game_id"},
		},
		{
			name: "domain_registrations",
			file: merge.DomainsFileName,
			columns: concatColumns(
				cols(typeText, "domain", "registrar"),
				cols(typeTimestamp, "created_at", "expires_at", "updated_at"),
				cols(typeText, "status", "name_servers", "registrant_country", "registrant_organization", "category"),
				provenance,
			),
			key:    []string{"domain"},
			checks: []string{"category IN (" + quotedList(domainCategories()) + ")"},
		},
		{
			name: "comprehensive_gaming_data",
			file: merge.ComprehensiveFileName,
			columns: concatColumns(
				participantCore,
				cols(typeDouble, models.ScoreGADTotal),
				cols(typeText, "anxiety_level"),
				cols(typeDouble, models.ScoreAggressionTotal),
				cols(typeDouble, scales...),
				participantDerived,
				enrichment,
				cols(typeText, merge.ColDataSource),
				provenance,
			),
			key: []string{"participant_id"},
		},
		{
			name: "anxiety_observations",
			file: merge.ParticipantFileName(models.KindAnxiety),
			columns: concatColumns(
				participantCore,
				cols(typeDouble, models.ScoreGADTotal),
				cols(typeText, "anxiety_level"),
				participantDerived,
				provenance,
			),
		},
		{
			name: "aggression_observations",
			file: merge.ParticipantFileName(models.KindAggression),
			columns: concatColumns(
				participantCore,
				cols(typeDouble, models.ScoreAggressionTotal),
				participantDerived,
				provenance,
			),
		},
		{
			name: "scale_observations",
			file: merge.ParticipantFileName(models.KindPredictionScales),
			columns: concatColumns(
				participantCore,
				cols(typeDouble, scales...),
				participantDerived,
				provenance,
			),
		},
		{
			name: "wellbeing_observations",
			file: merge.WellbeingFileName,
			columns: concatColumns(
				cols(typeText, "session_id", "game_title"),
				cols(typeDouble, "hours_played"),
				cols(typeDouble, models.WellbeingMetrics()...),
				cols(typeBigInt, "game_id"),
				cols(typeText, "genres", "source"),
				cols(typeDouble, "rating"),
				provenance,
			),
		},
	}
}

func domainCategories() []string {
	cats := models.DomainCategories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates every loaded table
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, spec := range tableSpecs() {
		if _, err := db.conn.ExecContext(ctx, createTableSQL(spec)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", spec.name, err)
		}
	}
	return nil
}

// createTableSQL renders the CREATE TABLE statement for spec.
func createTableSQL(spec tableSpec) string {
	var defs []string
	for _, c := range spec.columns {
		def := quoteIdent(c.name) + " " + string(c.typ)
		for _, k := range spec.key {
			if k == c.name {
				def += " NOT NULL"
			}
		}
		defs = append(defs, def)
	}
	if spec.appendOnly() {
		defs = append(defs, "run_id VARCHAR NOT NULL", "loaded_at TIMESTAMP NOT NULL")
	} else {
		defs = append(defs, "PRIMARY KEY ("+quoteIdents(spec.key)+")")
	}
	for _, chk := range spec.checks {
		defs = append(defs, "CHECK ("+chk+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", spec.name, strings.Join(defs, ",\n\t"))
}

// index is a secondary index on one column.
type index struct {
	name, table, column string
}

// secondaryIndexes support the dashboard query patterns.
var secondaryIndexes = []index{
	{"idx_comprehensive_age", "comprehensive_gaming_data", "age"},
	{"idx_comprehensive_hours", "comprehensive_gaming_data", "gaming_hours_daily"},
	{"idx_anxiety_participant", "anxiety_observations", "participant_id"},
	{"idx_anxiety_age", "anxiety_observations", "age"},
	{"idx_aggression_participant", "aggression_observations", "participant_id"},
	{"idx_aggression_age", "aggression_observations", "age"},
	{"idx_scale_participant", "scale_observations", "participant_id"},
	{"idx_scale_age", "scale_observations", "age"},
	{"idx_wellbeing_game", "wellbeing_observations", "game_title"},
	{"idx_games_genres", "games", "genres"},
	{"idx_games_rating", "games", "rating"},
	{"idx_domains_category", "domain_registrations", "category"},
}

// createIndexes creates every secondary index
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, ix := range secondaryIndexes {
		q := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", ix.name, ix.table, quoteIdent(ix.column))
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}

// dropIndexes drops the secondary indexes of table. DuckDB refuses
// INSERT OR REPLACE when a replaced column is indexed, so keyed tables are
// loaded without them and createIndexes rebuilds them afterwards.
func (db *DB) dropIndexes(ctx context.Context, table string) error {
	for _, ix := range secondaryIndexes {
		if ix.table != table {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, "DROP INDEX IF EXISTS "+ix.name); err != nil {
			return fmt.Errorf("failed to drop index %s: %w", ix.name, err)
		}
	}
	return nil
}

// Read-time view names.
const (
	ViewGamingBehavior = "gaming_behavior_analysis"
	ViewPsychology     = "psychology_analysis"
	ViewWellbeing      = "wellbeing_summary"
)

// MinSessionsPerTitle is the HAVING threshold of wellbeing_summary.
const MinSessionsPerTitle = 5

// createViews creates the dashboard views over the loaded tables
func (db *DB) createViews() error {
	ctx, cancel := schemaContext()
	defer cancel()

	views := []string{
		`CREATE OR REPLACE VIEW ` + ViewGamingBehavior + ` AS
		SELECT
			participant_id,
			gaming_hours_daily,
			age,
			gender,
			gaming_preference,
			gad_total,
			aggression_score,
			gaming_addiction_risk,
			social_gaming_score,
			CASE
				WHEN gaming_hours_daily < 1 THEN 'Light'
				WHEN gaming_hours_daily < 3 THEN 'Moderate'
				WHEN gaming_hours_daily < 6 THEN 'Heavy'
				ELSE 'Extreme'
			END AS gaming_intensity,
			CASE
				WHEN age < 18 THEN 'Teen'
				WHEN age < 25 THEN 'Young Adult'
				WHEN age < 35 THEN 'Adult'
				ELSE 'Older Adult'
			END AS age_group
		FROM comprehensive_gaming_data
		WHERE participant_id IS NOT NULL`,

		`CREATE OR REPLACE VIEW ` + ViewPsychology + ` AS
		SELECT
			participant_id,
			openness,
			conscientiousness,
			extraversion,
			agreeableness,
			neuroticism,
			gad_total,
			aggression_score,
			gaming_addiction_risk,
			gaming_hours_daily,
			(openness + conscientiousness + extraversion + agreeableness + (5 - neuroticism)) / 5 AS big_five_wellness,
			CASE
				WHEN gaming_addiction_risk > 3.5 THEN 'High Risk'
				WHEN gaming_addiction_risk > 2.5 THEN 'Moderate Risk'
				ELSE 'Low Risk'
			END AS addiction_risk_level
		FROM comprehensive_gaming_data
		WHERE gaming_addiction_risk IS NOT NULL OR openness IS NOT NULL`,

		fmt.Sprintf(`CREATE OR REPLACE VIEW `+ViewWellbeing+` AS
		SELECT
			game_title,
			COUNT(*) AS player_count,
			AVG(hours_played) AS avg_hours_played,
			AVG(wellbeing_score) AS avg_wellbeing,
			AVG(stress_level) AS avg_stress,
			AVG(social_connection_score) AS avg_social_connection,
			AVG(achievement_satisfaction) AS avg_achievement_satisfaction
		FROM wellbeing_observations
		WHERE game_title IS NOT NULL
		GROUP BY game_title
		HAVING COUNT(*) >= %d
		ORDER BY avg_wellbeing DESC`, MinSessionsPerTitle),
	}
	for _, q := range views {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create view: %w", err)
		}
	}
	return nil
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = quoteIdent(n)
	}
	return strings.Join(q, ", ")
}

// quotedList renders values as a SQL string-literal list.
func quotedList(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(q, ", ")
}
