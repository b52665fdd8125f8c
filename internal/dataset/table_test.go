// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"math"
	"strings"
	"testing"
)

func mustAppend(t *testing.T, tbl *Table, cells ...string) {
	t.Helper()
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = ParseCell(c)
	}
	if err := tbl.Append(row); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in       string
		wantNull bool
	}{
		{"", true},
		{"  ", true},
		{"NA", true},
		{"n/a", true},
		{"NaN", true},
		{"null", true},
		{"None", false},
		{"0", false},
		{"more than 3 hours", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseCell(tt.in).IsNull(); got != tt.wantNull {
				t.Errorf("ParseCell(%q).IsNull() = %v, want %v", tt.in, got, tt.wantNull)
			}
		})
	}
}

func TestValue_Conversions(t *testing.T) {
	if f, ok := String(" 3.5 ").Float(); !ok || f != 3.5 {
		t.Errorf("Float() = %v, %v, want 3.5, true", f, ok)
	}
	if _, ok := String("abc").Float(); ok {
		t.Error(`String("abc").Float() ok = true, want false`)
	}
	if i, ok := String("570.0").Int(); !ok || i != 570 {
		t.Errorf("Int() = %v, %v, want 570, true", i, ok)
	}
	if _, ok := String("1.5").Int(); ok {
		t.Error(`String("1.5").Int() ok = true, want false`)
	}
	if b, ok := String("Yes").Bool(); !ok || !b {
		t.Errorf("Bool() = %v, %v, want true, true", b, ok)
	}
	if !Float(math.NaN()).IsNull() {
		t.Error("Float(NaN) should be null")
	}
	if Float(2.25).String() != "2.25" {
		t.Errorf("Float(2.25).String() = %q, want 2.25", Float(2.25).String())
	}
	if !Null().Equal(Value{}) || Null().Equal(String("")) {
		t.Error("Equal() should distinguish null from empty string")
	}
}

func TestNew_UniquifiesColumns(t *testing.T) {
	tbl := New([]string{"score", "age", "score", "score"})
	want := "score,age,score.1,score.2"
	if got := strings.Join(tbl.Columns(), ","); got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestTable_SelectAndRename(t *testing.T) {
	tbl := New([]string{"id", "age", "hours"})
	mustAppend(t, tbl, "A1", "22", "3")
	mustAppend(t, tbl, "A2", "", "5")

	sel := tbl.Select("hours", "id", "missing")
	if got := strings.Join(sel.Columns(), ","); got != "hours,id,missing" {
		t.Errorf("Select columns = %q", got)
	}
	if sel.Get(0, "hours").String() != "3" || !sel.Get(1, "missing").IsNull() {
		t.Errorf("Select values wrong: %v", sel.Row(0))
	}
	if tbl.Width() != 3 {
		t.Errorf("Select mutated receiver width = %d", tbl.Width())
	}

	renamed := tbl.Rename(map[string]string{"id": "participant_id", "hours": "age"})
	if !renamed.Has("participant_id") {
		t.Error("Rename did not rename id")
	}
	if !renamed.Has("hours") {
		t.Error("Rename onto an existing column should be skipped")
	}
	if renamed.Get(1, "participant_id").String() != "A2" {
		t.Errorf("renamed value = %q, want A2", renamed.Get(1, "participant_id").String())
	}
}

func TestTable_WithColumnAndFilter(t *testing.T) {
	tbl := New([]string{"id"})
	mustAppend(t, tbl, "A1")
	mustAppend(t, tbl, "A2")

	withSource := tbl.WithConstant("data_source", String("anxiety"))
	if withSource.Width() != 2 || tbl.Width() != 1 {
		t.Fatalf("WithConstant widths = %d/%d, want 2/1", withSource.Width(), tbl.Width())
	}

	if _, err := tbl.WithColumn("x", []Value{Null()}); err == nil {
		t.Error("WithColumn with wrong length should fail")
	}

	kept := withSource.Filter(func(_ int, r Row) bool { return r[0].String() == "A2" })
	if kept.Len() != 1 || kept.Get(0, "data_source").String() != "anxiety" {
		t.Errorf("Filter() len = %d", kept.Len())
	}
}

func TestConcat_ColumnSuperset(t *testing.T) {
	a := New([]string{"participant_id", "anxiety"})
	mustAppend(t, a, "A1", "5")
	b := New([]string{"participant_id", "aggression"})
	mustAppend(t, b, "G1", "12")

	out := Concat(a, b)
	if got := strings.Join(out.Columns(), ","); got != "participant_id,anxiety,aggression" {
		t.Errorf("Columns() = %q", got)
	}
	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	if !out.Get(0, "aggression").IsNull() || !out.Get(1, "anxiety").IsNull() {
		t.Error("missing cells should be null")
	}
	if out.Get(1, "aggression").String() != "12" {
		t.Errorf("aggression = %q, want 12", out.Get(1, "aggression").String())
	}
}

func TestTable_AppendWidthMismatch(t *testing.T) {
	tbl := New([]string{"a", "b"})
	if err := tbl.Append(Row{String("x")}); err == nil {
		t.Error("Append() with short row should fail")
	}
}
