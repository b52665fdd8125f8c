// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
	"github.com/tomtom215/respawn/internal/models"
)

// ErrUnparseable is returned when a source file exists but no encoding or
// parser accepts it.
var ErrUnparseable = errors.New("source file could not be parsed")

// DefaultSeed is the synthetic seed used when Config.Seed is zero.
const DefaultSeed int64 = 42

const stageName = "ingest"

// Config configures a Loader.
type Config struct {
	SourceDir string // raw source files are probed here
	OutputDir string // staged UTF-8 copies are written here
	Seed      int64  // synthetic generator seed
}

// Loader finds, decodes and stages raw source tables.
type Loader struct {
	cfg Config
}

// NewLoader creates a loader.
func NewLoader(cfg Config) *Loader {
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	return &Loader{cfg: cfg}
}

// Load returns the table for kind. A missing source never fails: a
// deterministic synthetic table is returned instead. An existing file that
// cannot be parsed returns an error wrapping ErrUnparseable.
func (l *Loader) Load(ctx context.Context, kind models.Kind) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logging.Ctx(ctx)

	for _, name := range Candidates(kind) {
		path := filepath.Join(l.cfg.SourceDir, name)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnparseable, path, err)
		}
		if info.IsDir() {
			continue
		}

		tbl, encoding, err := readSource(path, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnparseable, path, err)
		}
		log.Info().
			Str("kind", string(kind)).
			Str("path", path).
			Str("encoding", encoding).
			Int("rows", tbl.Len()).
			Int("columns", tbl.Width()).
			Msg("Loaded source table")
		return &Loaded{kind: kind, table: tbl, Path: path, Encoding: encoding}, nil
	}

	tbl, err := Synthesize(kind, l.cfg.Seed)
	if err != nil {
		return nil, err
	}
	metrics.SyntheticFallbacks.WithLabelValues(string(kind)).Inc()
	log.Warn().
		Str("kind", string(kind)).
		Str("provenance", string(models.ProvenanceSynthetic)).
		Int64("seed", l.cfg.Seed).
		Int("rows", tbl.Len()).
		Strs("candidates", Candidates(kind)).
		Msg("Source file not found, generated synthetic table")
	return &Synthesized{kind: kind, table: tbl, Seed: l.cfg.Seed}, nil
}

func readSource(path string, kind models.Kind) (*dataset.Table, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		tbl, err := dataset.ReadXLSX(path)
		return tbl, "xlsx", err
	}
	tbl, enc, err := dataset.ReadCSVFile(path, encodingsFor(kind))
	return tbl, enc.Name, err
}

// StageReport summarizes one staged kind.
type StageReport struct {
	Kind       models.Kind       `json:"kind"`
	Provenance models.Provenance `json:"provenance"`
	Source     string            `json:"source"` // source path, or "synthetic"
	Encoding   string            `json:"encoding,omitempty"`
	Rows       int               `json:"rows"`
	Columns    int               `json:"columns"`
	Output     string            `json:"output"`
}

// StagedFileName returns the staged artifact name. The name carries
// provenance so later stages can recover it without a side channel.
func StagedFileName(kind models.Kind, prov models.Provenance) string {
	if prov == models.ProvenanceSynthetic {
		return string(kind) + "_synthetic.csv"
	}
	return string(kind) + "_raw.csv"
}

// Stage loads kind and writes the staged UTF-8 CSV into OutputDir. A stale
// artifact of the other provenance is removed.
func (l *Loader) Stage(ctx context.Context, kind models.Kind) (*StageReport, error) {
	res, err := l.Load(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := filepath.Join(l.cfg.OutputDir, StagedFileName(kind, res.Provenance()))
	if err := dataset.WriteCSVFile(out, res.Table()); err != nil {
		return nil, fmt.Errorf("stage %s: %w", kind, err)
	}

	other := models.ProvenanceSynthetic
	if res.Provenance() == models.ProvenanceSynthetic {
		other = models.ProvenanceLoaded
	}
	stale := filepath.Join(l.cfg.OutputDir, StagedFileName(kind, other))
	if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Ctx(ctx).Warn().Err(err).Str("path", stale).Msg("Failed to remove stale staged file")
	}

	report := &StageReport{
		Kind:       kind,
		Provenance: res.Provenance(),
		Rows:       res.Table().Len(),
		Columns:    res.Table().Width(),
		Output:     out,
	}
	switch r := res.(type) {
	case *Loaded:
		report.Source = r.Path
		report.Encoding = r.Encoding
	case *Synthesized:
		report.Source = string(models.ProvenanceSynthetic)
	}
	metrics.RecordRows(stageName, string(kind), report.Rows)
	return report, nil
}

// Run stages every kind in order. A kind that fails does not stop the others;
// all failures are joined into the returned error.
func (l *Loader) Run(ctx context.Context, kinds []models.Kind) ([]*StageReport, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(stageName, time.Since(start)) }()

	reports := make([]*StageReport, 0, len(kinds))
	var errs []error
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report, err := l.Stage(ctx, kind)
		if err != nil {
			metrics.StageErrors.WithLabelValues(stageName, string(kind)).Inc()
			logging.Ctx(ctx).Error().Err(err).Str("kind", string(kind)).Msg("Failed to stage dataset")
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

// OpenStaged reads the staged artifact for kind from dir, returning the table
// and the provenance recorded in its file name.
func OpenStaged(dir string, kind models.Kind) (*dataset.Table, models.Provenance, error) {
	for _, prov := range []models.Provenance{models.ProvenanceLoaded, models.ProvenanceSynthetic} {
		path := filepath.Join(dir, StagedFileName(kind, prov))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		tbl, _, err := dataset.ReadCSVFile(path, []dataset.Encoding{dataset.UTF8})
		if err != nil {
			return nil, "", fmt.Errorf("read staged %s: %w", kind, err)
		}
		return tbl, prov, nil
	}
	return nil, "", fmt.Errorf("no staged table for %s in %s: %w", kind, dir, os.ErrNotExist)
}
