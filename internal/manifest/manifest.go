// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package manifest

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrRunNotFound is returned when no record exists for a run.
var ErrRunNotFound = errors.New("run not found")

// KindSummary is the outcome of one dataset kind within a stage.
type KindSummary struct {
	Rows       int    `json:"rows"`
	Provenance string `json:"provenance,omitempty"`
	Skips      int    `json:"skips,omitempty"`
	Dropped    int    `json:"dropped,omitempty"`
	Duplicates int    `json:"duplicates,omitempty"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StageRecord is the outcome of one stage of a run.
type StageRecord struct {
	Stage     string                 `json:"stage"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Error     string                 `json:"error,omitempty"`
	Kinds     map[string]KindSummary `json:"kinds,omitempty"`
}

// Failed reports whether the stage ended with an error.
func (r StageRecord) Failed() bool { return r.Error != "" }

// Run is everything recorded for one run id.
type Run struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Version   string        `json:"version,omitempty"`
	Stages    []StageRecord `json:"stages"`
}

// sortStages orders stages by start time.
func (r *Run) sortStages() {
	sort.SliceStable(r.Stages, func(i, j int) bool {
		return r.Stages[i].StartedAt.Before(r.Stages[j].StartedAt)
	})
}

// Store persists run manifests.
type Store interface {
	// BeginRun records the start of a run and makes it the latest run.
	BeginRun(ctx context.Context, runID, version string, startedAt time.Time) error
	// RecordStage stores rec under runID, replacing an earlier record of the same stage.
	RecordStage(ctx context.Context, runID string, rec StageRecord) error
	// Run returns the manifest of runID, or ErrRunNotFound.
	Run(ctx context.Context, runID string) (*Run, error)
	// Latest returns the most recently begun run, or ErrRunNotFound.
	Latest(ctx context.Context) (*Run, error)
	Close() error
}
