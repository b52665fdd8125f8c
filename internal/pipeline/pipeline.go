// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/database"
	"github.com/tomtom215/respawn/internal/fetch"
	"github.com/tomtom215/respawn/internal/ingest"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/manifest"
	"github.com/tomtom215/respawn/internal/merge"
	"github.com/tomtom215/respawn/internal/metrics"
	"github.com/tomtom215/respawn/internal/models"
	"github.com/tomtom215/respawn/internal/reconcile"
)

// Stage names one pipeline step.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageIngest    Stage = "ingest"
	StageReconcile Stage = "reconcile"
	StageMerge     Stage = "merge"
	StageLoad      Stage = "load"
)

// CoreStages returns the stages of a full run in order. Fetching is not
// part of a run and must be requested explicitly.
func CoreStages() []Stage {
	return []Stage{StageIngest, StageReconcile, StageMerge, StageLoad}
}

// ParseStage returns the stage called name.
func ParseStage(name string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case StageFetch, StageIngest, StageReconcile, StageMerge, StageLoad:
		return s, nil
	}
	return "", fmt.Errorf("unknown stage %q", name)
}

// Report is the outcome of Run.
type Report struct {
	RunID  string
	Stages []manifest.StageRecord
}

// Pipeline runs stages against one configuration and records every stage
// in the run manifest.
type Pipeline struct {
	cfg     *config.Config
	store   manifest.Store
	version string
	now     func() time.Time
}

// New creates a pipeline. store receives one record per stage.
func New(cfg *config.Config, store manifest.Store, version string) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, version: version, now: time.Now}
}

// Run executes stages in order under one run id, taken from ctx or newly
// generated. A failed stage stops the run; the stages after it never start.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (report *Report, err error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.GenerateRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	defer func() { metrics.RecordRun(p.version, err) }()

	report = &Report{RunID: runID}
	if err := p.store.BeginRun(ctx, runID, p.version, p.now().UTC()); err != nil {
		return report, fmt.Errorf("begin run: %w", err)
	}
	logging.Ctx(ctx).Info().Str("version", p.version).Int("stages", len(stages)).Msg("Pipeline run started")

	for _, stage := range stages {
		rec, stageErr := p.runStage(ctx, stage)
		report.Stages = append(report.Stages, rec)
		if err := p.store.RecordStage(ctx, runID, rec); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("stage", string(stage)).Msg("Failed to record stage in manifest")
		}
		if stageErr != nil {
			logging.Ctx(ctx).Error().Err(stageErr).Str("stage", string(stage)).Msg("Stage failed, stopping run")
			return report, fmt.Errorf("%s: %w", stage, stageErr)
		}
	}

	logging.Ctx(ctx).Info().Msg("Pipeline run completed")
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage) (manifest.StageRecord, error) {
	ctx = logging.ContextWithStage(ctx, string(stage))
	start := p.now()
	rec := manifest.StageRecord{Stage: string(stage), StartedAt: start.UTC()}

	var err error
	switch stage {
	case StageFetch:
		rec.Kinds, err = p.fetch(ctx)
	case StageIngest:
		rec.Kinds, err = p.ingest(ctx)
	case StageReconcile:
		rec.Kinds, err = p.reconcile(ctx)
	case StageMerge:
		rec.Kinds, err = p.merge(ctx)
	case StageLoad:
		rec.Kinds, err = p.load(ctx)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}

	rec.Duration = p.now().Sub(start)
	if err != nil {
		rec.Error = err.Error()
	}
	return rec, err
}

func (p *Pipeline) fetch(ctx context.Context) (map[string]manifest.KindSummary, error) {
	stats, err := fetch.New(fetch.Config{SourceDir: p.cfg.Paths.SourceDir, Fetch: p.cfg.Fetch}).Run(ctx)
	kinds := make(map[string]manifest.KindSummary, len(stats))
	for name, s := range stats {
		ks := manifest.KindSummary{
			Rows:    s.Written,
			Skips:   s.NotFound,
			Dropped: s.Failed,
			Output:  s.Output,
		}
		if s.Skipped != "" {
			ks.Error = "skipped: " + s.Skipped
		}
		kinds[name] = ks
	}
	return kinds, err
}

func (p *Pipeline) ingest(ctx context.Context) (map[string]manifest.KindSummary, error) {
	loader := ingest.NewLoader(ingest.Config{
		SourceDir: p.cfg.Paths.SourceDir,
		OutputDir: p.cfg.Paths.StagingDir,
		Seed:      p.cfg.Ingest.SyntheticSeed,
	})
	kinds := models.AllKinds()
	reports, err := loader.Run(ctx, kinds)

	out := failedKinds(kinds, err)
	for _, r := range reports {
		out[string(r.Kind)] = manifest.KindSummary{
			Rows:       r.Rows,
			Provenance: string(r.Provenance),
			Output:     r.Output,
		}
	}
	return out, err
}

func (p *Pipeline) reconcile(ctx context.Context) (map[string]manifest.KindSummary, error) {
	r := reconcile.New(reconcile.Config{
		InputDir:         p.cfg.Paths.StagingDir,
		OutputDir:        p.cfg.Paths.CleanedDir,
		WriteSpreadsheet: true,
	})
	kinds := models.AllKinds()
	outcomes, err := r.Run(ctx, kinds)

	out := failedKinds(kinds, err)
	for _, o := range outcomes {
		rows := 0
		if o.Table != nil {
			rows = o.Table.Len()
		}
		out[string(o.Kind)] = manifest.KindSummary{
			Rows:       rows,
			Provenance: string(o.Provenance),
			Skips:      len(o.Skips),
			Dropped:    o.Dropped,
			Duplicates: o.Duplicates,
			Output:     o.Output,
		}
	}
	return out, err
}

func (p *Pipeline) merge(ctx context.Context) (map[string]manifest.KindSummary, error) {
	m := merge.New(merge.Config{
		InputDir:      p.cfg.Paths.CleanedDir,
		OutputDir:     p.cfg.Paths.MergedDir,
		AlignmentSeed: p.cfg.Merge.AlignmentSeed,
	})
	res, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := map[string]manifest.KindSummary{
		"master": {
			Rows:       res.Master.Len(),
			Skips:      len(res.Summary.Master.Skipped),
			Duplicates: res.Summary.Master.DuplicatesRemoved,
			Output:     merge.MasterFileName,
		},
		"comprehensive": {
			Rows:       res.Comprehensive.Len(),
			Duplicates: res.Summary.Comprehensive.DuplicatesRemoved,
			Output:     merge.ComprehensiveFileName,
		},
	}
	for _, v := range res.Views {
		out["view_"+v.Name] = manifest.KindSummary{Rows: v.Table.Len(), Output: merge.ViewFileName(v.Name)}
	}
	if res.Wellbeing != nil {
		out["wellbeing"] = manifest.KindSummary{Rows: res.Wellbeing.Len(), Output: merge.WellbeingFileName}
	}
	if res.Games != nil {
		out["games"] = manifest.KindSummary{Rows: res.Games.Len(), Output: merge.GamesFileName}
	}
	if res.Domains != nil {
		out["domains"] = manifest.KindSummary{Rows: res.Domains.Len(), Output: merge.DomainsFileName}
	}
	return out, nil
}

// load recreates the database file when configured and loads the merged
// artifacts into it. The connection is closed on every path.
func (p *Pipeline) load(ctx context.Context) (kinds map[string]manifest.KindSummary, err error) {
	if p.cfg.Database.Recreate {
		if err := database.Remove(p.cfg.Database.Path); err != nil {
			return nil, err
		}
	}
	db, err := database.Open(&p.cfg.Database)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Ctx(ctx).Error().Err(cerr).Msg("Error closing database")
			err = errors.Join(err, cerr)
		}
	}()

	stats, err := db.Load(ctx, database.LoadInput{
		Dir:   p.cfg.Paths.MergedDir,
		RunID: logging.RunIDFromContext(ctx),
	})
	if stats == nil {
		return nil, err
	}

	kinds = make(map[string]manifest.KindSummary, len(stats.Tables)+len(stats.Snapshots))
	for name, ts := range stats.Tables {
		kinds[name] = manifest.KindSummary{
			Rows:       ts.Rows,
			Dropped:    ts.Rejected,
			Duplicates: ts.Duplicates,
			Skips:      ts.Coerced,
		}
	}
	for name, n := range stats.Snapshots {
		kinds[name] = manifest.KindSummary{Rows: n}
	}
	for _, file := range stats.Missing {
		kinds[file] = manifest.KindSummary{Error: "missing"}
	}
	logging.Ctx(ctx).Info().
		Int("tables", len(stats.Tables)).
		Int("snapshots", len(stats.Snapshots)).
		Dur("duration", stats.Duration).
		Msg("Database load finished")
	return kinds, err
}

// failedKinds attributes each error joined by a stage to the kind its
// message is prefixed with.
func failedKinds(kinds []models.Kind, err error) map[string]manifest.KindSummary {
	out := make(map[string]manifest.KindSummary, len(kinds))
	if err == nil {
		return out
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		for _, k := range kinds {
			if strings.HasPrefix(e.Error(), string(k)+":") {
				out[string(k)] = manifest.KindSummary{Error: e.Error()}
			}
		}
	}
	return out
}

// OpenStore opens the badger manifest at cfg.Path, or an in-memory store
// when the manifest is disabled.
func OpenStore(cfg config.ManifestConfig) (manifest.Store, error) {
	if !cfg.Enabled {
		return manifest.NewMemoryStore(), nil
	}
	s, err := manifest.OpenBadger(cfg.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
