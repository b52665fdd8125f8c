// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/respawn/internal/dataset"
)

// TableSummary describes one input or output table.
type TableSummary struct {
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// QualityReport is the data-quality section for one merged table.
type QualityReport struct {
	Rows           int     `json:"rows"`
	Cells          int     `json:"cells"`
	MissingCells   int     `json:"missing_cells"`
	MissingPercent float64 `json:"missing_percent"`
	// KeyColumn is empty when the table has no identifier column.
	KeyColumn    string `json:"key_column,omitempty"`
	DuplicateIDs int    `json:"duplicate_ids"`
}

// Summary is written as merge_summary.json.
type Summary struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	RunID         string                   `json:"run_id,omitempty"`
	Inputs        map[string]TableSummary  `json:"inputs"`
	Master        MasterStats              `json:"master"`
	Comprehensive ComprehensiveStats       `json:"comprehensive"`
	Views         map[string]ViewStats     `json:"views"`
	Titles        TitleStats               `json:"title_merge"`
	Prepared      map[string]int           `json:"prepared_rows"`
	Quality       map[string]QualityReport `json:"data_quality"`
}

// keyColumns are tried in order when counting duplicate identifiers.
var keyColumns = []string{colParticipantID, colSessionID, colGameID, colDomain}

// Quality measures missing cells and duplicate identifiers in tbl.
func Quality(tbl *dataset.Table) QualityReport {
	r := QualityReport{Rows: tbl.Len(), Cells: tbl.Len() * tbl.Width()}
	for i := 0; i < tbl.Len(); i++ {
		for _, v := range tbl.Row(i) {
			if v.IsNull() {
				r.MissingCells++
			}
		}
	}
	if r.Cells > 0 {
		r.MissingPercent = math.Round(float64(r.MissingCells)/float64(r.Cells)*10000) / 100
	}

	r.KeyColumn = firstPresent(keyColumns, tbl)
	if r.KeyColumn != "" {
		keys := []string{r.KeyColumn}
		if r.KeyColumn == colGameID && tbl.Has(colGameSource) {
			keys = []string{colGameSource, colGameID}
		}
		_, r.DuplicateIDs = DedupeBy(tbl, keys...)
	}
	return r
}

func summarizeTable(tbl *dataset.Table) TableSummary {
	return TableSummary{Rows: tbl.Len(), Columns: tbl.Columns()}
}

// WriteSummary writes s as indented JSON to path.
func WriteSummary(path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode merge summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write merge summary: %w", err)
	}
	return nil
}
