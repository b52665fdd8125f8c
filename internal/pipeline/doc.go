// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package pipeline runs the respawn stages in order under one run id.
//
// Stages communicate only through the artifacts they write to disk, so any
// stage can be run on its own. Every stage outcome, including per-kind row
// counts and failures, is recorded in a manifest.Store: the badger-backed
// store when manifest.enabled is set, an in-memory store otherwise.
//
// A failed stage stops the run. Ingest and reconcile keep going past a kind
// that fails and report all failures together, which still blocks the
// stages after them.
package pipeline
