// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

func csvTable(t *testing.T, content string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	return tbl
}

// participants builds n participant rows with ids prefix0001...
func participants(prefix string, n int) *dataset.Table {
	tbl := dataset.New([]string{"participant_id", "age", "gaming_hours_daily", "data_provenance"})
	for i := 0; i < n; i++ {
		_ = tbl.Append(dataset.Row{
			dataset.String(fmt.Sprintf("%s%04d", prefix, i+1)),
			dataset.Int(int64(18 + i%40)),
			dataset.Float(float64(i % 10)),
			dataset.String("synthetic"),
		})
	}
	return tbl
}

func wellbeingRows(n int) *dataset.Table {
	tbl := dataset.New([]string{"session_id", "game_title", "hours_played", "wellbeing_score", "stress_level", "social_connection_score", "achievement_satisfaction"})
	for i := 0; i < n; i++ {
		_ = tbl.Append(dataset.Row{
			dataset.String(fmt.Sprintf("W%04d", i+1)),
			dataset.String(fmt.Sprintf("Game %d", i%5)),
			dataset.Int(int64(i)),
			dataset.Int(int64(1 + i%10)),
			dataset.Int(int64(1 + (i+3)%10)),
			dataset.Int(5),
			dataset.Int(7),
		})
	}
	return tbl
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Half-Life 2!", "half life 2"},
		{"half life 2", "half life 2"},
		{"  The   Witcher 3: Wild Hunt ", "the witcher 3 wild hunt"},
		{"Pokémon™ Go", "pokémon go"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeTitle(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeTitle(got); again != got {
				t.Errorf("NormalizeTitle not idempotent: %q -> %q", got, again)
			}
		})
	}

	if NormalizeTitle("Half-Life 2!") != NormalizeTitle("half life 2") {
		t.Error("titles differing only in punctuation should normalize equal")
	}
}

func TestStandardize(t *testing.T) {
	tbl := csvTable(t, "respondent_id,user_age,hours_per_week,favorite_genre\nr1,20,10,rpg\n")
	got := Standardize(tbl)
	want := []string{"participant_id", "age", "gaming_hours_weekly", "gaming_preference"}
	if strings.Join(got.Columns(), ",") != strings.Join(want, ",") {
		t.Errorf("Columns() = %v, want %v", got.Columns(), want)
	}

	// The canonical column already exists, so the synonym stays.
	tbl = csvTable(t, "participant_id,id\np1,x\n")
	got = Standardize(tbl)
	if !got.Has("id") || !got.Has("participant_id") {
		t.Errorf("Columns() = %v, want id kept beside participant_id", got.Columns())
	}
}

func TestDedupeBy(t *testing.T) {
	tbl := csvTable(t, "participant_id,v\np1,first\np2,a\np1,second\n,n1\n,n2\n")

	got, removed := DedupeBy(tbl, "participant_id")
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", got.Len())
	}
	if v := got.Get(0, "v").String(); v != "first" {
		t.Errorf("kept %q, want first occurrence", v)
	}

	again, removed := DedupeBy(got, "participant_id")
	if removed != 0 || again.Len() != got.Len() {
		t.Errorf("second DedupeBy removed %d rows, want 0", removed)
	}
}

func TestAlign(t *testing.T) {
	t.Run("cycled when enrichment is shorter", func(t *testing.T) {
		idx, method := Align(500, 50, 42)
		if method != AlignmentCycled {
			t.Errorf("method = %s, want %s", method, AlignmentCycled)
		}
		if len(idx) != 500 {
			t.Fatalf("len(idx) = %d, want 500", len(idx))
		}
		for i, j := range idx {
			if j != i%50 {
				t.Fatalf("idx[%d] = %d, want %d", i, j, i%50)
			}
		}
	})

	t.Run("sampled without replacement", func(t *testing.T) {
		idx, method := Align(50, 500, 42)
		if method != AlignmentSampled {
			t.Errorf("method = %s, want %s", method, AlignmentSampled)
		}
		seen := make(map[int]bool)
		for _, j := range idx {
			if j < 0 || j >= 500 {
				t.Fatalf("index %d out of range", j)
			}
			if seen[j] {
				t.Fatalf("index %d drawn twice", j)
			}
			seen[j] = true
		}
		again, _ := Align(50, 500, 42)
		for i := range idx {
			if idx[i] != again[i] {
				t.Fatalf("Align not deterministic at %d: %d != %d", i, idx[i], again[i])
			}
		}
	})

	t.Run("equal lengths sample a permutation", func(t *testing.T) {
		idx, method := Align(10, 10, 7)
		if method != AlignmentSampled || len(idx) != 10 {
			t.Errorf("Align(10, 10) = %d rows %s, want 10 sampled", len(idx), method)
		}
	})

	t.Run("nothing to align", func(t *testing.T) {
		for _, c := range [][2]int{{0, 10}, {10, 0}} {
			if idx, method := Align(c[0], c[1], 1); idx != nil || method != AlignmentNone {
				t.Errorf("Align(%d, %d) = %v %s, want nil none", c[0], c[1], idx, method)
			}
		}
	})
}

func TestBuildComprehensive_AlignsShorterEnrichment(t *testing.T) {
	tables := []NamedTable{{Kind: models.KindAnxiety, Table: participants("A", 500)}}
	comp, stats, err := BuildComprehensive(tables, wellbeingRows(50), 42)
	if err != nil {
		t.Fatalf("BuildComprehensive() error = %v", err)
	}
	if comp.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", comp.Len())
	}
	if stats.Alignment.Method != AlignmentCycled {
		t.Errorf("method = %s, want cycled", stats.Alignment.Method)
	}
	for _, c := range []string{"gaming_wellbeing_score", "gaming_stress_level", "gaming_social_connection_score", "gaming_achievement_satisfaction", "gaming_hours_played", ColAlignment, ColDataSource} {
		if !comp.Has(c) {
			t.Errorf("missing column %s", c)
		}
	}
	for i := 0; i < comp.Len(); i++ {
		if got := comp.Get(i, ColAlignment).String(); got != "cycled" {
			t.Fatalf("row %d %s = %q, want cycled", i, ColAlignment, got)
		}
	}
	if a, b := comp.Get(0, "gaming_hours_played"), comp.Get(50, "gaming_hours_played"); !a.Equal(b) {
		t.Errorf("cycled rows 0 and 50 differ: %v vs %v", a, b)
	}
}

func TestBuildComprehensive_UnionAndDedupe(t *testing.T) {
	anx := csvTable(t, "participant_id,age,gad_total,data_provenance\nA1,20,5,loaded\nX,30,9,loaded\n")
	agg := csvTable(t, "participant_id,age,aggression_total,data_provenance\nG1,25,12,loaded\nX,40,20,loaded\n")

	comp, stats, err := BuildComprehensive([]NamedTable{
		{Kind: models.KindAnxiety, Table: anx},
		{Kind: models.KindAggression, Table: agg},
	}, nil, 42)
	if err != nil {
		t.Fatalf("BuildComprehensive() error = %v", err)
	}
	if comp.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", comp.Len())
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", stats.DuplicatesRemoved)
	}
	if got := comp.Get(1, "age").String(); got != "30" {
		t.Errorf("duplicate X kept age %s, want first occurrence 30", got)
	}
	if !comp.Get(0, "aggression_total").IsNull() {
		t.Error("anxiety row should have null aggression_total")
	}
	if stats.Alignment.Method != AlignmentNone || !comp.Get(0, ColAlignment).IsNull() {
		t.Error("no wellbeing table should leave alignment none and null")
	}
}

func TestMergeMaster(t *testing.T) {
	anx := csvTable(t, "participant_id,age,gaming_hours_daily,gender,gad_total,data_provenance\nA1,20,2,male,5,loaded\nP,21,3,female,7,loaded\n")
	agg := csvTable(t, "participant_id,age,gaming_hours_daily,gender,aggression_total,data_provenance\nG1,30,4,other,10,synthetic\nP,99,9,male,1,synthetic\n")
	games := csvTable(t, "game_id,title,source\n1,Doom,steam\n")
	lonely := csvTable(t, "participant_id,unique_col\nL1,x\n")

	master, stats := MergeMaster([]NamedTable{
		{Kind: models.KindAnxiety, Table: anx},
		{Kind: models.KindAggression, Table: agg},
		{Kind: models.KindSteamGames, Table: games},
		{Kind: models.KindPredictionScales, Table: lonely},
	})

	if master.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", master.Len())
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", stats.DuplicatesRemoved)
	}
	if len(stats.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 tables", stats.Skipped)
	}
	if stats.SkippedRows != 2 {
		t.Errorf("SkippedRows = %d, want 2", stats.SkippedRows)
	}

	wantCols := []string{"participant_id", "age", "gaming_hours_daily", "gender", ColDataSource, ColProvenance}
	if got := strings.Join(master.Columns(), ","); got != strings.Join(wantCols, ",") {
		t.Errorf("Columns() = %s, want %s", got, strings.Join(wantCols, ","))
	}
	if got := master.Get(1, "age").String(); got != "21" {
		t.Errorf("P age = %s, want first occurrence 21", got)
	}
	if stats.SourceCounts["anxiety"] != 2 || stats.SourceCounts["aggression"] != 1 {
		t.Errorf("SourceCounts = %v, want anxiety 2 aggression 1", stats.SourceCounts)
	}
}

func TestMergeMaster_PreferenceIsCore(t *testing.T) {
	anx := csvTable(t, "participant_id,age,gaming_hours_daily,gaming_preference\nA1,20,2,rpg\n")
	agg := csvTable(t, "participant_id,age,gaming_hours_daily\nG1,30,4\n")
	master, _ := MergeMaster([]NamedTable{
		{Kind: models.KindAnxiety, Table: anx},
		{Kind: models.KindAggression, Table: agg},
	})

	wantCols := []string{"participant_id", "age", "gaming_hours_daily", "gaming_preference", ColDataSource}
	if got := strings.Join(master.Columns(), ","); got != strings.Join(wantCols, ",") {
		t.Errorf("Columns() = %s, want %s", got, strings.Join(wantCols, ","))
	}
	if got := master.Get(0, "gaming_preference").String(); got != "rpg" {
		t.Errorf("A1 gaming_preference = %q, want rpg", got)
	}
	if !master.Get(1, "gaming_preference").IsNull() {
		t.Error("G1 gaming_preference should be null")
	}
}

func TestMergeMaster_ProvenanceIsNotUsable(t *testing.T) {
	// participant_id plus the provenance column is still one usable column.
	only := csvTable(t, "participant_id,data_provenance\nP1,loaded\n")
	full := csvTable(t, "participant_id,age\nP2,30\n")
	_, stats := MergeMaster([]NamedTable{
		{Kind: models.KindAnxiety, Table: only},
		{Kind: models.KindAggression, Table: full},
	})
	if len(stats.Skipped) != 1 || stats.Skipped[0].Name != "anxiety" {
		t.Errorf("Skipped = %v, want anxiety", stats.Skipped)
	}
}

func TestJoinByTitle(t *testing.T) {
	sessions := csvTable(t, "session_id,game_title,data_provenance\nW1,Half-Life 2!,loaded\nW2,Unknown Thing,loaded\nW3,half life 2,loaded\n")
	games := csvTable(t, "game_id,title,data_provenance\n10,Half Life 2,loaded\n11,HALF-LIFE 2,loaded\n")

	out, stats := JoinByTitle(sessions, "game_title", games, "title")
	if out.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", out.Len())
	}
	if stats.Matched != 2 || stats.Unmatched != 1 {
		t.Errorf("stats = %+v, want 2 matched 1 unmatched", stats)
	}
	if !out.Has("data_provenance_game") {
		t.Errorf("Columns() = %v, want suffixed data_provenance_game", out.Columns())
	}
	if got := out.Get(0, "game_id").String(); got != "10" {
		t.Errorf("game_id = %s, want first-indexed 10", got)
	}
	if !out.Get(1, "game_id").IsNull() {
		t.Error("unmatched row should have null game_id")
	}
}

func TestBuildViews(t *testing.T) {
	anx := csvTable(t, "participant_id,age,gaming_hours_daily,gad_total,anxiety_level,data_provenance\nA1,20,2,5,Mild,loaded\n")
	steam := csvTable(t, "game_id,title,source\n1,Doom,steam\n")
	views := BuildViews([]NamedTable{
		{Kind: models.KindAnxiety, Table: anx},
		{Kind: models.KindSteamGames, Table: steam},
	})

	byName := make(map[string]*View)
	for _, v := range views {
		byName[v.Name] = v
	}
	mh, ok := byName[ViewMentalHealth]
	if !ok {
		t.Fatalf("views = %v, want mental_health", views)
	}
	if !mh.Table.Has("anxiety_level") || !mh.Table.Has(ColSourceDataset) {
		t.Errorf("mental_health columns = %v", mh.Table.Columns())
	}
	cols := mh.Table.Columns()
	for i := 1; i < len(cols); i++ {
		if cols[i-1] > cols[i] {
			t.Errorf("view columns not sorted: %v", cols)
			break
		}
	}
	if _, ok := byName[ViewSteamGames]; !ok {
		t.Error("steam_games pass-through view missing")
	}
	if got := ViewFileName(ViewGamingBehavior); got != "gaming_behavior_analysis_dataset.csv" {
		t.Errorf("ViewFileName() = %s", got)
	}
}

func TestBuildView_Admission(t *testing.T) {
	tests := []struct {
		name    string
		spec    ViewSpec
		csv     string
		want    bool
		wantCol string
	}{
		{
			name: "too few candidates",
			spec: KeywordViews[0],
			csv:  "participant_id,age,title\nP1,20,x\n",
		},
		{
			name: "id age hours without a mental health column",
			spec: KeywordViews[0],
			csv:  "participant_id,age,gaming_hours_daily,escapism_score\nP1,20,2,4\n",
		},
		{
			name:    "anxiety column admits",
			spec:    KeywordViews[0],
			csv:     "participant_id,age,anxiety_level\nP1,20,Mild\n",
			want:    true,
			wantCol: "anxiety_level",
		},
		{
			name: "gaming keywords without hours or preference",
			spec: KeywordViews[1],
			csv:  "participant_id,age,playtime_notes,screen_time\nP1,20,x,y\n",
		},
		{
			name:    "preference column admits",
			spec:    KeywordViews[1],
			csv:     "participant_id,age,gaming_preference\nP1,20,rpg\n",
			want:    true,
			wantCol: "gaming_preference",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := BuildView(tt.spec, []NamedTable{{Kind: models.KindPredictionScales, Table: csvTable(t, tt.csv)}})
			if (v != nil) != tt.want {
				t.Fatalf("BuildView() returned view = %v, want %v", v != nil, tt.want)
			}
			if v != nil && !v.Table.Has(tt.wantCol) {
				t.Errorf("view columns = %v, want %s", v.Table.Columns(), tt.wantCol)
			}
		})
	}
}

func TestPrepareGames_LastWins(t *testing.T) {
	steam := csvTable(t, "game_id,title,source\n570,Dota 2 old,steam\n730,CS2,steam\n570,Dota 2 new,steam\n")
	rawg := csvTable(t, "game_id,title,source\n570,Dota 2,rawg\n")
	got, removed := PrepareGames([]NamedTable{
		{Kind: models.KindGameMetadata, Table: rawg},
		{Kind: models.KindSteamGames, Table: steam},
	})
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	titles := make(map[string]string)
	for i := 0; i < got.Len(); i++ {
		titles[got.Get(i, "source").String()+"/"+got.Get(i, "game_id").String()] = got.Get(i, "title").String()
	}
	if titles["steam/570"] != "Dota 2 new" {
		t.Errorf("steam/570 title = %q, want Dota 2 new", titles["steam/570"])
	}
	if titles["rawg/570"] != "Dota 2" {
		t.Errorf("rawg/570 title = %q, want Dota 2", titles["rawg/570"])
	}
}

func TestPrepareDomains_LastWins(t *testing.T) {
	domains := csvTable(t, "domain,registrar_name\nsteampowered.com,OldReg\nepicgames.com,Gandi\nsteampowered.com,MarkMonitor\n")
	got, removed := PrepareDomains([]NamedTable{{Kind: models.KindDomains, Table: domains}})
	if removed != 1 || got.Len() != 2 {
		t.Fatalf("removed %d rows %d, want 1 and 2", removed, got.Len())
	}
	if v := got.Get(1, "registrar_name").String(); v != "MarkMonitor" {
		t.Errorf("steampowered.com registrar = %q, want MarkMonitor", v)
	}
}

func TestQuality(t *testing.T) {
	tbl := csvTable(t, "participant_id,age\nP1,20\nP1,\nP2,\n")
	q := Quality(tbl)
	if q.MissingCells != 2 || q.Cells != 6 {
		t.Errorf("missing %d of %d, want 2 of 6", q.MissingCells, q.Cells)
	}
	if q.MissingPercent != 33.33 {
		t.Errorf("MissingPercent = %v, want 33.33", q.MissingPercent)
	}
	if q.KeyColumn != "participant_id" || q.DuplicateIDs != 1 {
		t.Errorf("key %s duplicates %d, want participant_id 1", q.KeyColumn, q.DuplicateIDs)
	}
}
