// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package manifest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu     sync.Mutex
	runs   map[string]*Run
	latest string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// BeginRun implements Store.
func (s *MemoryStore) BeginRun(_ context.Context, runID, version string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &Run{RunID: runID, StartedAt: startedAt, Version: version}
	s.latest = runID
	return nil
}

// RecordStage implements Store.
func (s *MemoryStore) RecordStage(_ context.Context, runID string, rec StageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("record stage %s: %w", rec.Stage, ErrRunNotFound)
	}
	for i := range run.Stages {
		if run.Stages[i].Stage == rec.Stage {
			run.Stages[i] = rec
			return nil
		}
	}
	run.Stages = append(run.Stages, rec)
	return nil
}

// Run implements Store. The returned run is a copy.
func (s *MemoryStore) Run(_ context.Context, runID string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("load run %s: %w", runID, ErrRunNotFound)
	}
	out := *run
	out.Stages = append([]StageRecord(nil), run.Stages...)
	out.sortStages()
	return &out, nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(ctx context.Context) (*Run, error) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest == "" {
		return nil, fmt.Errorf("load latest run: %w", ErrRunNotFound)
	}
	return s.Run(ctx, latest)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
