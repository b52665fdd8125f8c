// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/ingest"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
	"github.com/tomtom215/respawn/internal/models"
	"github.com/tomtom215/respawn/internal/validation"
)

const stageName = "reconcile"

// ColProvenance is the provenance column added to every cleaned table.
const ColProvenance = "data_provenance"

// Config configures a Reconciler.
type Config struct {
	InputDir         string // staged tables are read from here
	OutputDir        string // cleaned tables are written here
	WriteSpreadsheet bool   // also write prediction_scales_clean.xlsx
}

// Reconciler maps staged source tables onto canonical observations.
type Reconciler struct {
	cfg Config
}

// New creates a reconciler.
func New(cfg Config) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Outcome is the reconciliation of one table.
type Outcome struct {
	Kind         models.Kind          `json:"kind"`
	Provenance   models.Provenance    `json:"provenance"`
	Observations []models.Observation `json:"-"`
	Table        *dataset.Table       `json:"-"`
	Skips        []SkipRecord         `json:"skips,omitempty"`
	Dropped      int                  `json:"dropped"`
	Duplicates   int                  `json:"duplicates"`
	// Claimed maps each canonical field to the source columns it took.
	Claimed map[string][]string `json:"claimed"`
	Output  string              `json:"output,omitempty"`
}

// observationRow is a kept row: the typed observation and its cleaned cells
// keyed by output column.
type observationRow struct {
	model models.Observation
	cells map[string]dataset.Value
}

// rowView gives a kind reconciler access to the claimed cells of one source row.
type rowView struct {
	tbl     *dataset.Table
	index   int
	claimed map[string][]string
}

// value returns the first claimed column of field, or null when unclaimed.
func (v rowView) value(field string) dataset.Value {
	cols := v.claimed[field]
	if len(cols) == 0 {
		return dataset.Null()
	}
	return v.tbl.Get(v.index, cols[0])
}

func (v rowView) has(field string) bool { return len(v.claimed[field]) > 0 }

// values returns every claimed column of field in claim order.
func (v rowView) values(field string) []dataset.Value {
	cols := v.claimed[field]
	out := make([]dataset.Value, len(cols))
	for i, c := range cols {
		out[i] = v.tbl.Get(v.index, c)
	}
	return out
}

// kindSchema is the per-kind half of reconciliation.
type kindSchema interface {
	// columns is the cleaned table layout, without the provenance column.
	columns() []string
	// prepare raises table-level ledger entries once claims are known.
	prepare(claimed map[string][]string) []SkipRecord
	// reconcileRow fills res.obs or notes why the row is dropped.
	reconcileRow(v rowView, res *rowResult)
}

func schemaFor(kind models.Kind, prov models.Provenance) (kindSchema, error) {
	switch kind {
	case models.KindAnxiety, models.KindAggression, models.KindPredictionScales:
		return newParticipantSchema(kind, prov), nil
	case models.KindSteamGames:
		return &gameSchema{source: models.GameSourceSteam}, nil
	case models.KindGameMetadata:
		return &gameSchema{source: models.GameSourceRAWG}, nil
	case models.KindWellbeing:
		return &wellbeingSchema{prov: prov}, nil
	case models.KindDomains:
		return &domainSchema{}, nil
	}
	return nil, fmt.Errorf("no reconciliation rules for kind %q", kind)
}

// Reconcile maps tbl onto canonical observations of kind. Row-level
// problems never fail the call; they are recorded in Outcome.Skips.
func (r *Reconciler) Reconcile(tbl *dataset.Table, kind models.Kind, prov models.Provenance) (*Outcome, error) {
	if tbl == nil {
		return nil, fmt.Errorf("reconcile %s: nil table", kind)
	}
	schema, err := schemaFor(kind, prov)
	if err != nil {
		return nil, err
	}

	claimed := claimColumns(sourceColumns(tbl), rulesFor(kind))
	out := &Outcome{
		Kind:       kind,
		Provenance: prov,
		Claimed:    claimed,
		Skips:      schema.prepare(claimed),
	}

	cols := append(schema.columns(), ColProvenance)
	cleaned := dataset.New(cols)
	seen := make(map[string]int, tbl.Len())

	for i := 0; i < tbl.Len(); i++ {
		res := &rowResult{index: i}

		fp := fingerprint(tbl.Row(i))
		if first, dup := seen[fp]; dup {
			res.note("", ReasonDuplicate, fmt.Sprintf("identical to row %d", first))
			out.Duplicates++
			out.Skips = append(out.Skips, res.issues...)
			continue
		}
		seen[fp] = i

		schema.reconcileRow(rowView{tbl: tbl, index: i, claimed: claimed}, res)
		if !res.drop && res.obs.model != nil {
			if verr := validation.ValidateStruct(res.obs.model); verr != nil {
				res.note(strings.Join(verr.Fields(), ","), ReasonInvalid, verr.Error())
			}
		}
		out.Skips = append(out.Skips, res.issues...)
		if res.drop || res.obs.model == nil {
			out.Dropped++
			continue
		}

		res.obs.cells[ColProvenance] = dataset.String(string(prov))
		cleaned.AppendRecord(res.obs.cells)
		out.Observations = append(out.Observations, res.obs.model)
	}
	out.Table = cleaned

	for _, s := range out.Skips {
		metrics.RecordRowIssue(string(kind), s.Reason)
	}
	return out, nil
}

// sourceColumns drops the provenance column so it is never claimed.
func sourceColumns(tbl *dataset.Table) []string {
	cols := tbl.Columns()
	out := cols[:0]
	for _, c := range cols {
		if c != ColProvenance {
			out = append(out, c)
		}
	}
	return out
}

// fingerprint identifies a row by every raw cell, nulls included.
func fingerprint(row dataset.Row) string {
	var b strings.Builder
	for _, v := range row {
		if v.IsNull() {
			b.WriteString("\x00")
		} else {
			b.WriteString("\x01")
			b.WriteString(v.String())
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

// CleanedFileName returns the cleaned artifact name for kind.
func CleanedFileName(kind models.Kind) string {
	return string(kind) + "_clean.csv"
}

// SpreadsheetFileName is the spreadsheet copy of the cleaned prediction scales.
const SpreadsheetFileName = "prediction_scales_clean.xlsx"

// ReconcileKind reads the staged table for kind, reconciles it and writes
// the cleaned artifact.
func (r *Reconciler) ReconcileKind(ctx context.Context, kind models.Kind) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tbl, prov, err := ingest.OpenStaged(r.cfg.InputDir, kind)
	if err != nil {
		return nil, err
	}

	out, err := r.Reconcile(tbl, kind, prov)
	if err != nil {
		return nil, err
	}

	out.Output = filepath.Join(r.cfg.OutputDir, CleanedFileName(kind))
	if err := dataset.WriteCSVFile(out.Output, out.Table); err != nil {
		return nil, fmt.Errorf("write cleaned %s: %w", kind, err)
	}
	if kind == models.KindPredictionScales && r.cfg.WriteSpreadsheet {
		path := filepath.Join(r.cfg.OutputDir, SpreadsheetFileName)
		if err := dataset.WriteXLSX(path, "prediction_scales", out.Table); err != nil {
			return nil, fmt.Errorf("write spreadsheet: %w", err)
		}
	}

	metrics.RecordRows(stageName, string(kind), out.Table.Len())
	logging.Ctx(ctx).Info().
		Str("kind", string(kind)).
		Str("provenance", string(prov)).
		Int("source_rows", tbl.Len()).
		Int("rows", out.Table.Len()).
		Int("dropped", out.Dropped).
		Int("duplicates", out.Duplicates).
		Int("skips", len(out.Skips)).
		Msg("Reconciled dataset")
	return out, nil
}

// Run reconciles every kind in order. A failed kind does not stop the
// others; all failures are joined into the returned error.
func (r *Reconciler) Run(ctx context.Context, kinds []models.Kind) ([]*Outcome, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(stageName, time.Since(start)) }()

	outcomes := make([]*Outcome, 0, len(kinds))
	var errs []error
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := r.ReconcileKind(ctx, kind)
		if err != nil {
			metrics.StageErrors.WithLabelValues(stageName, string(kind)).Inc()
			logging.Ctx(ctx).Error().Err(err).Str("kind", string(kind)).Msg("Failed to reconcile dataset")
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, errors.Join(errs...)
}

// OpenCleaned reads the cleaned artifact for kind from dir.
func OpenCleaned(dir string, kind models.Kind) (*dataset.Table, error) {
	path := filepath.Join(dir, CleanedFileName(kind))
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open cleaned %s: %w", kind, err)
	}
	tbl, _, err := dataset.ReadCSVFile(path, []dataset.Encoding{dataset.UTF8})
	if err != nil {
		return nil, fmt.Errorf("read cleaned %s: %w", kind, err)
	}
	return tbl, nil
}
