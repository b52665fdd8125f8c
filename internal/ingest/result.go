// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package ingest

import (
	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// Result is the outcome of loading one kind: either *Loaded or *Synthesized.
//
//	switch r := res.(type) {
//	case *ingest.Loaded:
//	    log.Info().Str("path", r.Path).Str("encoding", r.Encoding).Msg("loaded")
//	case *ingest.Synthesized:
//	    log.Warn().Int64("seed", r.Seed).Msg("synthesized")
//	}
type Result interface {
	Kind() models.Kind
	Table() *dataset.Table
	Provenance() models.Provenance
	isResult()
}

// Loaded is a table read from a source file.
type Loaded struct {
	kind  models.Kind
	table *dataset.Table

	Path     string // source file that was read
	Encoding string // encoding that decoded it ("xlsx" for workbooks)
}

// Kind implements Result.
func (l *Loaded) Kind() models.Kind { return l.kind }

// Table implements Result.
func (l *Loaded) Table() *dataset.Table { return l.table }

// Provenance implements Result.
func (l *Loaded) Provenance() models.Provenance { return models.ProvenanceLoaded }

func (l *Loaded) isResult() {}

// Synthesized is a deterministic stand-in generated because no source file
// existed.
type Synthesized struct {
	kind  models.Kind
	table *dataset.Table

	Seed int64
}

// Kind implements Result.
func (s *Synthesized) Kind() models.Kind { return s.kind }

// Table implements Result.
func (s *Synthesized) Table() *dataset.Table { return s.table }

// Provenance implements Result.
func (s *Synthesized) Provenance() models.Provenance { return models.ProvenanceSynthetic }

func (s *Synthesized) isResult() {}
