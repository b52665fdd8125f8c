// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
	"github.com/tomtom215/respawn/internal/models"
	"github.com/tomtom215/respawn/internal/reconcile"
)

const stageName = "merge"

// DefaultAlignmentSeed seeds enrichment sampling when none is configured.
const DefaultAlignmentSeed = 42

// ErrNoParticipantTables is returned when no participant-survey table is
// available to merge.
var ErrNoParticipantTables = errors.New("no participant tables to merge")

// Config configures a Merger.
type Config struct {
	InputDir      string // cleaned tables are read from here
	OutputDir     string // merged artifacts are written here
	AlignmentSeed int64
}

// Merger combines cleaned tables into the merged artifacts.
type Merger struct {
	cfg Config
}

// New creates a merger.
func New(cfg Config) *Merger {
	return &Merger{cfg: cfg}
}

// Result holds every merged table and the summary describing them.
type Result struct {
	Master        *dataset.Table
	Comprehensive *dataset.Table
	Views         []*View
	Wellbeing     *dataset.Table // nil without a wellbeing table
	Games         *dataset.Table // nil without game tables
	Domains       *dataset.Table // nil without a domain table
	Participants  []NamedTable
	Summary       *Summary
}

// Merge builds every merged table from tables, which are expected in
// pipeline order. Domain registrations take no part in the master merge or
// the views; they only produce the prepared domain table.
func (m *Merger) Merge(ctx context.Context, tables []NamedTable) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	std := make([]NamedTable, 0, len(tables))
	summary := &Summary{
		GeneratedAt: time.Now().UTC(),
		RunID:       logging.RunIDFromContext(ctx),
		Inputs:      make(map[string]TableSummary, len(tables)),
		Views:       make(map[string]ViewStats),
		Prepared:    make(map[string]int),
		Quality:     make(map[string]QualityReport),
	}
	for _, nt := range tables {
		nt.Table = Standardize(nt.Table)
		std = append(std, nt)
		summary.Inputs[string(nt.Kind)] = summarizeTable(nt.Table)
	}

	participants := participantTables(std)
	if len(participants) == 0 {
		return nil, ErrNoParticipantTables
	}

	var analytic []NamedTable
	for _, nt := range std {
		if nt.Kind != models.KindDomains {
			analytic = append(analytic, nt)
		}
	}

	res := &Result{Participants: participants, Summary: summary}

	var stats MasterStats
	res.Master, stats = MergeMaster(analytic)
	summary.Master = stats

	wellbeing := find(std, models.KindWellbeing)
	comp, cstats, err := BuildComprehensive(participants, wellbeing, m.cfg.AlignmentSeed)
	if err != nil {
		return nil, fmt.Errorf("comprehensive table: %w", err)
	}
	res.Comprehensive = comp
	summary.Comprehensive = cstats

	res.Views = BuildViews(analytic)
	for _, v := range res.Views {
		summary.Views[v.Name] = v.Stats
	}

	var gamesRemoved, domainsRemoved int
	res.Games, gamesRemoved = PrepareGames(std)
	res.Domains, domainsRemoved = PrepareDomains(std)

	if wellbeing != nil {
		games := res.Games
		if games == nil {
			games = dataset.New([]string{colTitle})
		}
		res.Wellbeing, summary.Titles = JoinByTitle(wellbeing, colGameTitle, games, colTitle)
	}

	for _, nt := range participants {
		summary.Prepared[ParticipantFileName(nt.Kind)] = nt.Table.Len()
	}
	for name, t := range map[string]*dataset.Table{
		MasterFileName:        res.Master,
		ComprehensiveFileName: res.Comprehensive,
		WellbeingFileName:     res.Wellbeing,
		GamesFileName:         res.Games,
		DomainsFileName:       res.Domains,
	} {
		if t == nil {
			continue
		}
		summary.Prepared[name] = t.Len()
		summary.Quality[name] = Quality(t)
	}

	removed := stats.DuplicatesRemoved + cstats.DuplicatesRemoved
	metrics.DuplicatesRemoved.Add(float64(removed))

	logging.Ctx(ctx).Info().
		Int("master_rows", res.Master.Len()).
		Int("master_skipped_tables", len(stats.Skipped)).
		Int("comprehensive_rows", comp.Len()).
		Str("alignment", string(cstats.Alignment.Method)).
		Int("views", len(res.Views)).
		Int("duplicates_removed", removed).
		Int("duplicate_games_removed", gamesRemoved).
		Int("duplicate_domains_removed", domainsRemoved).
		Msg("Merged datasets")
	if cstats.Alignment.Method != AlignmentNone {
		logging.Ctx(ctx).Warn().
			Str("method", string(cstats.Alignment.Method)).
			Int("base_rows", cstats.Alignment.BaseRows).
			Int("enrichment_rows", cstats.Alignment.EnrichmentRows).
			Msg("Enrichment columns are aligned by position, not by participant")
	}
	return res, nil
}

// Write stores every artifact of res in the output directory.
func (m *Merger) Write(ctx context.Context, res *Result) error {
	if err := os.MkdirAll(m.cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("create merge output dir: %w", err)
	}

	write := func(name string, t *dataset.Table) error {
		if t == nil {
			return nil
		}
		if err := dataset.WriteCSVFile(filepath.Join(m.cfg.OutputDir, name), t); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logging.Ctx(ctx).Debug().Str("file", name).Int("rows", t.Len()).Msg("Wrote merged artifact")
		return nil
	}

	if err := write(MasterFileName, res.Master); err != nil {
		return err
	}
	if err := write(ComprehensiveFileName, res.Comprehensive); err != nil {
		return err
	}
	for _, v := range res.Views {
		if err := write(ViewFileName(v.Name), v.Table); err != nil {
			return err
		}
	}
	for _, nt := range res.Participants {
		if err := write(ParticipantFileName(nt.Kind), nt.Table); err != nil {
			return err
		}
	}
	if err := write(WellbeingFileName, res.Wellbeing); err != nil {
		return err
	}
	if err := write(GamesFileName, res.Games); err != nil {
		return err
	}
	if err := write(DomainsFileName, res.Domains); err != nil {
		return err
	}
	return WriteSummary(filepath.Join(m.cfg.OutputDir, SummaryFileName), res.Summary)
}

// Run reads the cleaned tables, merges them and writes the artifacts.
// Missing cleaned tables are skipped with a warning.
func (m *Merger) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(stageName, time.Since(start)) }()

	var tables []NamedTable
	for _, kind := range models.AllKinds() {
		tbl, err := reconcile.OpenCleaned(m.cfg.InputDir, kind)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("Cleaned table unavailable, skipping")
			continue
		}
		tables = append(tables, NamedTable{Kind: kind, Table: tbl})
	}

	res, err := m.Merge(ctx, tables)
	if err != nil {
		metrics.StageErrors.WithLabelValues(stageName, "all").Inc()
		return nil, err
	}
	if err := m.Write(ctx, res); err != nil {
		metrics.StageErrors.WithLabelValues(stageName, "all").Inc()
		return nil, err
	}
	metrics.RecordRows(stageName, "master", res.Master.Len())
	metrics.RecordRows(stageName, "comprehensive", res.Comprehensive.Len())
	return res, nil
}
