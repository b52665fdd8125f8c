// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
)

const (
	snapshotPrefix = "view_"
	viewFileSuffix = "_analysis_dataset.csv"
)

// SnapshotTableName returns the table an analysis view is frozen into.
func SnapshotTableName(view string) string {
	return snapshotPrefix + view
}

// loadSnapshots freezes every analysis view artifact in dir into a
// view_<name> table, replacing any earlier snapshot.
func (db *DB) loadSnapshots(ctx context.Context, dir string) (map[string]int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+viewFileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list view artifacts: %w", err)
	}
	sort.Strings(paths)

	out := make(map[string]int, len(paths))
	for _, p := range paths {
		view := strings.TrimSuffix(filepath.Base(p), viewFileSuffix)
		tbl, err := readArtifact(p)
		if err != nil {
			return out, fmt.Errorf("read view %s: %w", view, err)
		}
		name := SnapshotTableName(view)
		if err := db.loadSnapshot(ctx, name, tbl); err != nil {
			return out, fmt.Errorf("snapshot %s: %w", name, err)
		}
		out[name] = tbl.Len()
		logging.Ctx(ctx).Debug().Str("table", name).Int("rows", tbl.Len()).Msg("Loaded view snapshot")
	}
	return out, nil
}

// inferColumns types each column DOUBLE when every non-null cell is numeric
// and at least one is present, VARCHAR otherwise.
func inferColumns(tbl *dataset.Table) []column {
	out := make([]column, 0, tbl.Width())
	for _, name := range tbl.Columns() {
		typ := typeText
		numeric, seen := true, false
		for _, v := range tbl.Column(name) {
			if v.IsNull() {
				continue
			}
			seen = true
			if _, ok := v.Float(); !ok {
				numeric = false
				break
			}
		}
		if numeric && seen {
			typ = typeDouble
		}
		out = append(out, column{name: name, typ: typ})
	}
	return out
}

// loadSnapshot recreates table name from tbl in one transaction.
func (db *DB) loadSnapshot(ctx context.Context, name string, tbl *dataset.Table) (err error) {
	opStart := time.Now()
	defer func() { metrics.RecordDBQuery("snapshot", name, time.Since(opStart), err) }()

	columns := inferColumns(tbl)
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c.name) + " " + string(c.typ)
		names[i] = c.name
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Str("table", name).Msg("Transaction rollback failed")
			}
		}
	}()

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err = tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), quoteIdents(names), strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	args := make([]any, len(columns))
	for i := 0; i < tbl.Len(); i++ {
		for j, c := range columns {
			args[j], _ = bind(tbl.Get(i, c.name), c.typ)
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	metrics.LoaderRowsWritten.WithLabelValues(name).Add(float64(tbl.Len()))
	return nil
}

// SnapshotTables lists the view_ snapshot tables present in the database.
func (db *DB) SnapshotTables(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	names, err := db.queryStrings(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_name LIKE ? ORDER BY table_name",
		snapshotPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list snapshot tables: %w", err)
	}
	return names, nil
}
