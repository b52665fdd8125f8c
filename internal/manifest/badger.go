// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package manifest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	latestKey = "manifest:latest"
	runPrefix = "manifest:run:"
)

func metaKey(runID string) []byte { return []byte(runPrefix + runID + ":meta") }

func stagePrefix(runID string) []byte { return []byte(runPrefix + runID + ":stage:") }

func stageKey(runID, stage string) []byte { return append(stagePrefix(runID), stage...) }

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a manifest store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for manifest: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already open BadgerDB instance.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// BeginRun implements Store.
func (s *BadgerStore) BeginRun(_ context.Context, runID, version string, startedAt time.Time) error {
	data, err := json.Marshal(Run{RunID: runID, StartedAt: startedAt, Version: version})
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(metaKey(runID), data); err != nil {
			return err
		}
		return txn.Set([]byte(latestKey), []byte(runID))
	})
}

// RecordStage implements Store.
func (s *BadgerStore) RecordStage(_ context.Context, runID string, rec StageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal stage record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stageKey(runID, rec.Stage), data)
	})
}

// Run implements Store.
func (s *BadgerStore) Run(_ context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		}); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = stagePrefix(runID)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec StageRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			run.Stages = append(run.Stages, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	run.sortStages()
	return &run, nil
}

// Latest implements Store.
func (s *BadgerStore) Latest(ctx context.Context) (*Run, error) {
	var runID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(latestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			runID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	return s.Run(ctx, runID)
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
