// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package ingest is the first pipeline stage: it finds each dataset kind's raw
source file, decodes it, and writes a staged UTF-8 copy for the reconciler.

Source discovery probes a fixed list of candidate filenames per kind (see
Candidates). Survey exports are decoded with an encoding fallback chain
(UTF-8, Latin-1, Windows-1252, ISO-8859-1); other kinds are strict UTF-8.
Workbooks (.xlsx) are read from their first sheet.

A missing source is not an error. The loader generates a deterministic
synthetic table from a fixed seed and returns it as *Synthesized, so callers
can always tell real data from stand-in data:

	res, err := loader.Load(ctx, models.KindAnxiety)
	if err != nil {
	    // errors.Is(err, ingest.ErrUnparseable): the file exists but is unreadable
	}
	if res.Provenance() == models.ProvenanceSynthetic {
	    // stand-in data
	}

Staged artifacts are named <kind>_raw.csv or <kind>_synthetic.csv.
*/
package ingest
