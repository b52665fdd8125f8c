// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package dataset provides the in-memory tabular representation passed between
// pipeline stages, together with its CSV and XLSX codecs.
//
// A Table has ordered column labels and rows of Values. A Value is a string-backed
// scalar with an explicit null marker, so "missing" never collides with an empty
// string or zero. Transformations (Select, Rename, WithColumn, Filter, Concat)
// return new tables.
//
// ReadCSVFile probes a list of encodings (see FallbackEncodings) and accepts the
// first one whose decode and parse both succeed.
package dataset
