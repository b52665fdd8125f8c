// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/database"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/manifest"
	"github.com/tomtom215/respawn/internal/merge"
	"github.com/tomtom215/respawn/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			SourceDir:  filepath.Join(root, "source"),
			StagingDir: filepath.Join(root, "staged"),
			CleanedDir: filepath.Join(root, "cleaned"),
			MergedDir:  filepath.Join(root, "merged"),
		},
		Ingest:   config.IngestConfig{SyntheticSeed: config.DefaultSeed},
		Merge:    config.MergeConfig{AlignmentSeed: config.DefaultSeed},
		Database: config.DatabaseConfig{Path: filepath.Join(root, "db", "respawn.duckdb"), MaxMemory: "1GB", Threads: 1, Recreate: true},
		Manifest: config.ManifestConfig{Enabled: false},
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"ingest", StageIngest, false},
		{" Merge ", StageMerge, false},
		{"load", StageLoad, false},
		{"fetch", StageFetch, false},
		{"status", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoreStages_ExcludesFetch(t *testing.T) {
	for _, s := range CoreStages() {
		if s == StageFetch {
			t.Fatal("CoreStages() should not include fetch")
		}
	}
	if got := len(CoreStages()); got != 4 {
		t.Errorf("len(CoreStages()) = %d, want 4", got)
	}
}

func TestFailedKinds(t *testing.T) {
	err := errors.Join(
		fmt.Errorf("%s: %w", models.KindAnxiety, errors.New("bad file")),
		fmt.Errorf("%s: %w", models.KindDomains, errors.New("worse file")),
	)
	got := failedKinds(models.AllKinds(), err)
	if len(got) != 2 {
		t.Fatalf("len(failedKinds) = %d, want 2", len(got))
	}
	if got[string(models.KindAnxiety)].Error != "anxiety: bad file" {
		t.Errorf("anxiety error = %q", got[string(models.KindAnxiety)].Error)
	}
	if len(failedKinds(models.AllKinds(), nil)) != 0 {
		t.Error("failedKinds(nil) should be empty")
	}
}

func TestPipeline_RunCoreStagesOnSyntheticData(t *testing.T) {
	cfg := testConfig(t)
	store := manifest.NewMemoryStore()
	p := New(cfg, store, "test")

	ctx := logging.ContextWithRunID(context.Background(), "run-1")
	report, err := p.Run(ctx, CoreStages()...)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", report.RunID)
	}
	if len(report.Stages) != 4 {
		t.Fatalf("len(Stages) = %d, want 4", len(report.Stages))
	}
	for _, rec := range report.Stages {
		if rec.Failed() {
			t.Errorf("stage %s failed: %s", rec.Stage, rec.Error)
		}
	}

	ingested := report.Stages[0].Kinds[string(models.KindAnxiety)]
	if ingested.Provenance != string(models.ProvenanceSynthetic) || ingested.Rows == 0 {
		t.Errorf("ingest anxiety = %+v, want synthetic rows", ingested)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.MergedDir, merge.MasterFileName)); err != nil {
		t.Errorf("master artifact missing: %v", err)
	}

	run, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if run.RunID != "run-1" || run.Version != "test" || len(run.Stages) != 4 {
		t.Errorf("manifest run = %+v", run)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	n, err := db.Count(context.Background(), "comprehensive_gaming_data")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != int64(report.Stages[2].Kinds["comprehensive"].Rows) {
		t.Errorf("comprehensive rows = %d, want %d", n, report.Stages[2].Kinds["comprehensive"].Rows)
	}
}

func TestPipeline_FailedStageStopsRun(t *testing.T) {
	cfg := testConfig(t)
	store := manifest.NewMemoryStore()
	p := New(cfg, store, "test")

	report, err := p.Run(context.Background(), StageMerge, StageLoad)
	if !errors.Is(err, merge.ErrNoParticipantTables) {
		t.Fatalf("Run() error = %v, want ErrNoParticipantTables", err)
	}
	if len(report.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(report.Stages))
	}

	run, err := store.Run(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(run.Stages) != 1 || !run.Stages[0].Failed() {
		t.Errorf("manifest stages = %+v, want one failed merge", run.Stages)
	}
	if _, err := os.Stat(cfg.Database.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database should not exist after a failed merge, stat error = %v", err)
	}
}

func TestPipeline_CanceledContext(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, manifest.NewMemoryStore(), "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, StageIngest); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(config.ManifestConfig{Enabled: false})
	if err != nil {
		t.Fatalf("OpenStore(disabled) error = %v", err)
	}
	if _, ok := s.(*manifest.MemoryStore); !ok {
		t.Errorf("OpenStore(disabled) = %T, want *manifest.MemoryStore", s)
	}
	_ = s.Close()

	s, err = OpenStore(config.ManifestConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "manifest")})
	if err != nil {
		t.Fatalf("OpenStore(enabled) error = %v", err)
	}
	if _, ok := s.(*manifest.BadgerStore); !ok {
		t.Errorf("OpenStore(enabled) = %T, want *manifest.BadgerStore", s)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
