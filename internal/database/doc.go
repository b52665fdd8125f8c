// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package database is the relational loader, the last pipeline stage. It
// writes the merged artifacts into a DuckDB file for the dashboard.
//
// # Architecture
//
//   - database.go: connection lifecycle (Open, Close, Remove)
//   - database_connection.go: pool configuration, context timeouts, checkpoints
//   - database_schema.go: table specs, indexes and the read-time views
//   - load.go: per-table transactional loading and type binding
//   - snapshot.go: view_<name> snapshot tables for the analysis views
//
// # Loading
//
// Every table loads inside its own transaction with one prepared statement
// and is rolled back on any error, which is reported as ErrPersistence.
// Keyed tables (games, domain_registrations, comprehensive_gaming_data) are
// deduplicated last-wins and written with INSERT OR REPLACE. Observation
// tables are append-only and stamped with run_id and loaded_at:
//
//	db, err := database.Open(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	stats, err := db.Load(ctx, database.LoadInput{Dir: cfg.Paths.MergedDir, RunID: runID})
//
// # Views
//
// gaming_behavior_analysis bands daily hours into Light (<1), Moderate (<3),
// Heavy (<6) and Extreme, and age into Teen (<18), Young Adult (<25), Adult
// (<35) and Older Adult. psychology_analysis computes Big Five wellness and
// addiction risk (High >3.5, Moderate >2.5, else Low). wellbeing_summary
// averages sessions per game title with at least five sessions.
package database
