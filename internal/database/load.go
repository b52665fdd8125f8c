// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
)

// LoadInput names the merged artifacts to load.
type LoadInput struct {
	Dir   string // directory holding the merged artifacts
	RunID string // stamped on append-only rows
}

// TableStats describes the load of one table.
type TableStats struct {
	Rows       int `json:"rows"`
	Duplicates int `json:"duplicates"` // keyed rows superseded by a later row
	Rejected   int `json:"rejected"`   // rows without a key
	Coerced    int `json:"coerced"`    // unreadable cells stored as NULL
}

// LoadStats summarizes a load.
type LoadStats struct {
	RunID     string                `json:"run_id"`
	Tables    map[string]TableStats `json:"tables"`
	Snapshots map[string]int        `json:"snapshots"`
	Missing   []string              `json:"missing,omitempty"`
	Duration  time.Duration         `json:"duration"`
}

// Load writes every merged artifact found in in.Dir. Each table loads in its
// own transaction; a failure rolls that table back and stops the load with
// an error wrapping ErrPersistence. Missing artifacts are skipped.
func (db *DB) Load(ctx context.Context, in LoadInput) (*LoadStats, error) {
	start := time.Now()
	loadedAt := start.UTC()
	stats := &LoadStats{
		RunID:     in.RunID,
		Tables:    make(map[string]TableStats),
		Snapshots: make(map[string]int),
	}

	for _, spec := range tableSpecs() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		path := filepath.Join(in.Dir, spec.file)
		tbl, err := readArtifact(path)
		if errors.Is(err, os.ErrNotExist) {
			logging.Ctx(ctx).Warn().Str("table", spec.name).Str("file", spec.file).Msg("Merged artifact missing, table left empty")
			stats.Missing = append(stats.Missing, spec.file)
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("%w: %s: %w", ErrPersistence, spec.name, err)
		}

		if !spec.appendOnly() {
			if err := db.dropIndexes(ctx, spec.name); err != nil {
				return stats, fmt.Errorf("%w: %s: %w", ErrPersistence, spec.name, err)
			}
		}
		ts, err := db.loadTable(ctx, spec, tbl, in.RunID, loadedAt)
		if err != nil {
			return stats, fmt.Errorf("%w: %s: %w", ErrPersistence, spec.name, err)
		}
		stats.Tables[spec.name] = ts
		logging.Ctx(ctx).Info().
			Str("table", spec.name).
			Int("rows", ts.Rows).
			Int("duplicates", ts.Duplicates).
			Int("rejected", ts.Rejected).
			Int("coerced", ts.Coerced).
			Msg("Loaded table")
	}

	if err := db.createIndexes(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	snaps, err := db.loadSnapshots(ctx, in.Dir)
	for name, n := range snaps {
		stats.Snapshots[name] = n
	}
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := db.Checkpoint(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to checkpoint after load")
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

func readArtifact(path string) (*dataset.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	tbl, _, err := dataset.ReadCSVFile(path, []dataset.Encoding{dataset.UTF8})
	return tbl, err
}

// dedupeLastWins keeps the last row for each key. Rows with a null key
// column are dropped and counted as rejected.
func dedupeLastWins(tbl *dataset.Table, key []string) (out *dataset.Table, duplicates, rejected int) {
	last := make(map[string]int, tbl.Len())
	keys := make([]string, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		var b strings.Builder
		for _, k := range key {
			v := tbl.Get(i, k)
			if v.IsNull() {
				keys[i] = ""
				rejected++
				b.Reset()
				break
			}
			b.WriteString(v.String())
			b.WriteByte('\x1f')
		}
		if b.Len() == 0 {
			continue
		}
		keys[i] = b.String()
		if _, seen := last[keys[i]]; seen {
			duplicates++
		}
		last[keys[i]] = i
	}
	out = tbl.Filter(func(i int, _ dataset.Row) bool {
		return keys[i] != "" && last[keys[i]] == i
	})
	return out, duplicates, rejected
}

// loadTable inserts tbl into spec's table inside one transaction.
func (db *DB) loadTable(ctx context.Context, spec tableSpec, tbl *dataset.Table, runID string, loadedAt time.Time) (ts TableStats, err error) {
	opStart := time.Now()
	defer func() { metrics.RecordDBQuery("load", spec.name, time.Since(opStart), err) }()

	if !spec.appendOnly() {
		tbl, ts.Duplicates, ts.Rejected = dedupeLastWins(tbl, spec.key)
	}

	names := spec.columnNames()
	if spec.appendOnly() {
		names = append(names, "run_id", "loaded_at")
	}
	verb := "INSERT INTO"
	if !spec.appendOnly() {
		verb = "INSERT OR REPLACE INTO"
	}
	query := fmt.Sprintf("%s %s (%s) VALUES (%s)",
		verb, spec.name, quoteIdents(names), strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return ts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Str("table", spec.name).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return ts, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	args := make([]any, len(names))
	for i := 0; i < tbl.Len(); i++ {
		for j, c := range spec.columns {
			v, ok := bind(tbl.Get(i, c.name), c.typ)
			if !ok {
				ts.Coerced++
			}
			args[j] = v
		}
		if spec.appendOnly() {
			args[len(spec.columns)] = runID
			args[len(spec.columns)+1] = loadedAt
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return ts, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return ts, fmt.Errorf("failed to commit transaction: %w", err)
	}
	ts.Rows = tbl.Len()
	metrics.LoaderRowsWritten.WithLabelValues(spec.name).Add(float64(ts.Rows))
	return ts, nil
}

// bind converts a cell to a driver value for typ. It reports false when a
// non-null cell could not be read and NULL is bound instead.
func bind(v dataset.Value, typ sqlType) (any, bool) {
	if v.IsNull() {
		return nil, true
	}
	switch typ {
	case typeInt, typeBigInt:
		if n, ok := v.Int(); ok {
			return n, true
		}
		if f, ok := v.Float(); ok && !math.IsInf(f, 0) {
			return int64(math.Round(f)), true
		}
		return nil, false
	case typeDouble:
		if f, ok := v.Float(); ok {
			return f, true
		}
		return nil, false
	case typeBool:
		if b, ok := v.Bool(); ok {
			return b, true
		}
		return nil, false
	case typeTimestamp:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v.String()); err == nil {
				return t.UTC(), true
			}
		}
		return nil, false
	default:
		return v.String(), true
	}
}

// Count returns the number of rows in a table or view.
func (db *DB) Count(ctx context.Context, name string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

// Counts returns the row count of every loaded table and read-time view.
func (db *DB) Counts(ctx context.Context) (map[string]int64, error) {
	names := []string{ViewGamingBehavior, ViewPsychology, ViewWellbeing}
	for _, spec := range tableSpecs() {
		names = append(names, spec.name)
	}
	out := make(map[string]int64, len(names))
	for _, n := range names {
		c, err := db.Count(ctx, n)
		if err != nil {
			return out, err
		}
		out[n] = c
	}
	return out, nil
}

// queryStrings runs a query returning one text column.
func (db *DB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s.String)
	}
	return out, rows.Err()
}
