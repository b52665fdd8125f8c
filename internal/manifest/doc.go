// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package manifest records what each pipeline run did: one record per stage
// with per-kind row counts, provenance and skip totals. The BadgerDB store
// persists across invocations so `respawn status` can show the last run; the
// in-memory store serves tests and runs with the manifest disabled.
package manifest
