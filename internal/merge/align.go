// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"math/rand/v2"
)

// AlignmentMethod says how enrichment rows were lined up with base rows.
// Neither method is a join: enrichment values are not tied to a specific
// participant, and every aligned row is flagged so downstream users know.
type AlignmentMethod string

const (
	// AlignmentSampled draws base-many enrichment rows without replacement.
	AlignmentSampled AlignmentMethod = "sampled"
	// AlignmentCycled repeats the enrichment rows in order and truncates.
	AlignmentCycled AlignmentMethod = "cycled"
	// AlignmentNone means there was nothing to align.
	AlignmentNone AlignmentMethod = "none"
)

// Align returns, for each of base rows, the enrichment row index it takes.
// When enrichment >= base a seeded sample without replacement is drawn;
// otherwise the enrichment rows are cycled. The same seed always yields the
// same indices.
func Align(base, enrichment int, seed int64) ([]int, AlignmentMethod) {
	if base <= 0 || enrichment <= 0 {
		return nil, AlignmentNone
	}
	idx := make([]int, base)
	if enrichment >= base {
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
		copy(idx, rng.Perm(enrichment)[:base])
		return idx, AlignmentSampled
	}
	for i := range idx {
		idx[i] = i % enrichment
	}
	return idx, AlignmentCycled
}
