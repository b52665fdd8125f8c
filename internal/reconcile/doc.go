// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package reconcile is the second pipeline stage. It maps staged source tables,
whose column labels differ from survey to survey, onto canonical
observations and writes one cleaned table per kind.

# Column Claims

Each kind has an ordered rule table. Source columns are sorted before
matching so the result never depends on column order. Exact canonical names
claim first, then keyword rules run by ascending priority, and a column is
claimed by at most one field. Likert item fields collect up to a fixed
number of columns (GAD 7, aggression 10, prediction subscales 6 each).

# Values

Free-text ages and hours are recovered with regular expressions
("22 years old", "more than 3 hours a day" = 4). Likert responses are scored
from ordered phrase tables; unmatched responses take the scale's neutral
score. Every value is clamped into its domain and every observation is
checked by the validation package before it is kept.

# Skip Ledger

Nothing about a bad row is swallowed. Each row produces a rowResult and
every default, unreadable value, duplicate or drop is recorded as a
SkipRecord with its row index and reason:

	out, err := r.Reconcile(tbl, models.KindAnxiety, models.ProvenanceLoaded)
	for _, s := range out.Skips {
	    fmt.Println(s) // row 1 age: defaulted (22)
	}

A row is dropped only for a missing key, an exact duplicate, invalid
values, or when both age and hours are unrecoverable.
*/
package reconcile
