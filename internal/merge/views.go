// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"sort"
	"strings"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// Analysis view names.
const (
	ViewMentalHealth     = "mental_health"
	ViewGamingBehavior   = "gaming_behavior"
	ViewPredictionScales = "prediction_scales"
	ViewSteamGames       = "steam_games"
)

// ViewSpec selects the columns of one keyword-driven analysis view.
type ViewSpec struct {
	Name     string
	Keywords []string
	// AllHours takes every hours column instead of the first preferred one.
	AllHours bool
	// Anchors, when set, admit only tables carrying one of these columns.
	// Without anchors a table must carry a keyword-matched column.
	Anchors []string
}

// KeywordViews are the keyword-driven views in output order.
var KeywordViews = []ViewSpec{
	{Name: ViewMentalHealth, Keywords: []string{"anxiety", "wellbeing", "aggression", "depression", "stress"}},
	{
		Name:     ViewGamingBehavior,
		Keywords: []string{"gaming", "play", "hours", "time", "frequency", "preference"},
		AllHours: true,
		Anchors:  append(append([]string(nil), hoursPreference...), colPreference),
	},
}

// ViewStats describes one analysis view.
type ViewStats struct {
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Sources []string `json:"sources"`
}

// View is a named analysis snapshot.
type View struct {
	Name  string
	Table *dataset.Table
	Stats ViewStats
}

// admits reports whether tbl carries the data the view is about, before any
// column counting.
func (v ViewSpec) admits(tbl *dataset.Table) bool {
	if len(v.Anchors) > 0 {
		for _, c := range v.Anchors {
			if tbl.Has(c) {
				return true
			}
		}
		return false
	}
	for _, c := range tbl.Columns() {
		if !isMetadata(c) && v.matchesKeyword(c) {
			return true
		}
	}
	return false
}

func (v ViewSpec) matchesKeyword(col string) bool {
	lower := strings.ToLower(col)
	for _, kw := range v.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// candidateColumns lists the columns a table offers to the view.
func (v ViewSpec) candidateColumns(tbl *dataset.Table) []string {
	var cols []string
	add := func(c string) {
		for _, have := range cols {
			if have == c {
				return
			}
		}
		cols = append(cols, c)
	}

	for _, c := range []string{colParticipantID, colAge} {
		if tbl.Has(c) {
			add(c)
		}
	}
	for _, c := range hoursPreference {
		if tbl.Has(c) {
			add(c)
			if !v.AllHours {
				break
			}
		}
	}
	for _, c := range tbl.Columns() {
		if !isMetadata(c) && v.matchesKeyword(c) {
			add(c)
		}
	}
	return cols
}

// BuildView unions every qualifying table over the sorted superset of the
// selected columns. A table qualifies when the view admits it and it offers
// more than two candidate columns. It returns nil when no table qualifies.
func BuildView(spec ViewSpec, tables []NamedTable) *View {
	var parts []*dataset.Table
	var sources []string
	for _, nt := range tables {
		if !spec.admits(nt.Table) {
			continue
		}
		cols := spec.candidateColumns(nt.Table)
		if len(cols) <= 2 {
			continue
		}
		parts = append(parts, nt.Table.Select(cols...).WithConstant(ColSourceDataset, dataset.String(string(nt.Kind))))
		sources = append(sources, string(nt.Kind))
	}
	if len(parts) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var superset []string
	for _, p := range parts {
		for _, c := range p.Columns() {
			if !seen[c] {
				seen[c] = true
				superset = append(superset, c)
			}
		}
	}
	sort.Strings(superset)

	tbl := dataset.ConcatColumns(superset, parts...)
	return &View{
		Name:  spec.Name,
		Table: tbl,
		Stats: ViewStats{Rows: tbl.Len(), Columns: tbl.Width(), Sources: sources},
	}
}

// passThroughViews are written unchanged from their cleaned tables.
var passThroughViews = map[models.Kind]string{
	models.KindPredictionScales: ViewPredictionScales,
	models.KindSteamGames:       ViewSteamGames,
}

// BuildViews returns the keyword views followed by the pass-through views,
// skipping any view with no input.
func BuildViews(tables []NamedTable) []*View {
	var views []*View
	for _, spec := range KeywordViews {
		if v := BuildView(spec, tables); v != nil {
			views = append(views, v)
		}
	}
	for _, nt := range tables {
		name, ok := passThroughViews[nt.Kind]
		if !ok {
			continue
		}
		views = append(views, &View{
			Name:  name,
			Table: nt.Table,
			Stats: ViewStats{Rows: nt.Table.Len(), Columns: nt.Table.Width(), Sources: []string{string(nt.Kind)}},
		})
	}
	return views
}

// ViewFileName returns the artifact name of an analysis view.
func ViewFileName(name string) string {
	return name + "_analysis_dataset.csv"
}
