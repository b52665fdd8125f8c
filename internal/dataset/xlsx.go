// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/respawn/internal/logging"
)

// ReadXLSX reads the first sheet of a workbook. The first row is the header.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := New(header)
	for n, rec := range rows[1:] {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("sheet row %d: %d cells, header has %d", n+2, len(rec), len(header))
		}
		row := make(Row, len(header))
		for j, cell := range rec {
			row[j] = ParseCell(cell)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// WriteXLSX writes t as a single-sheet workbook. Numeric cells are stored as
// numbers so the spreadsheet can be charted directly.
func WriteXLSX(path, sheet string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close workbook")
		}
	}()

	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	} else {
		sheet = "Sheet1"
	}

	header := make([]interface{}, len(t.cols))
	for j, c := range t.cols {
		header[j] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range t.rows {
		cells := make([]interface{}, len(r))
		for j, v := range r {
			switch {
			case v.IsNull():
				cells[j] = nil
			default:
				if num, ok := v.Float(); ok {
					cells[j] = num
				} else {
					cells[j] = v.String()
				}
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
