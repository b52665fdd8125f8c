// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import "fmt"

// Skip-ledger reasons.
const (
	ReasonDefaulted     = "defaulted"     // missing value replaced by a default; row kept
	ReasonUnrecoverable = "unrecoverable" // unreadable value replaced by a default; row kept
	ReasonUnmatched     = "unmatched"     // Likert responses scored neutral
	ReasonMissingColumn = "missing_column"
	ReasonMissingKey    = "missing_key" // row dropped
	ReasonDuplicate     = "duplicate"   // row dropped
	ReasonDropped       = "dropped"     // row dropped
	ReasonInvalid       = "invalid"     // row dropped
	ReasonDerived       = "derived"     // derived field nulled; row kept
)

// TableRow is the Row index used for table-level ledger entries.
const TableRow = -1

// SkipRecord is one entry of the skip ledger: what happened to which field
// of which source row.
type SkipRecord struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (s SkipRecord) String() string {
	if s.Row == TableRow {
		return fmt.Sprintf("table %s: %s (%s)", s.Field, s.Reason, s.Detail)
	}
	return fmt.Sprintf("row %d %s: %s (%s)", s.Row, s.Field, s.Reason, s.Detail)
}

// dropsRow reports whether the reason removes the row from the output.
func dropsRow(reason string) bool {
	switch reason {
	case ReasonMissingKey, ReasonDuplicate, ReasonDropped, ReasonInvalid:
		return true
	}
	return false
}

// rowResult is the reconciliation of one source row: the observation and
// cleaned cells when kept, plus every ledger entry raised on the way.
type rowResult struct {
	index  int
	obs    observationRow
	issues []SkipRecord
	drop   bool
}

func (r *rowResult) note(field, reason, detail string) {
	r.issues = append(r.issues, SkipRecord{Row: r.index, Field: field, Reason: reason, Detail: detail})
	if dropsRow(reason) {
		r.drop = true
	}
}
