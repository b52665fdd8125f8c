// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmpty is returned for input without a header row.
var ErrEmpty = errors.New("no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a header row followed by data rows. Short rows are padded
// with nulls; rows wider than the header are an error.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	t := New(header)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		row := make(Row, len(header))
		for j, cell := range rec {
			row[j] = ParseCell(cell)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// WriteCSV writes the header and rows. Nulls are written as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.cols))
	for _, r := range t.rows {
		for j, v := range r {
			rec[j] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t to path, creating parent directories. The file is
// written to a temporary name first and renamed into place.
func WriteCSVFile(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadCSVFile reads path, trying each encoding in order. The first encoding
// whose decode and parse both succeed wins. The returned error joins every
// attempt's failure when none does.
func ReadCSVFile(path string, encodings []Encoding) (*Table, Encoding, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the configured source directory
	if err != nil {
		return nil, Encoding{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(encodings) == 0 {
		encodings = []Encoding{UTF8}
	}

	var errs []error
	for _, enc := range encodings {
		decoded, err := enc.Decode(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", enc.Name, err))
			continue
		}
		t, err := ReadCSV(bytes.NewReader(decoded))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", enc.Name, err))
			continue
		}
		return t, enc, nil
	}
	return nil, Encoding{}, errors.Join(errs...)
}
