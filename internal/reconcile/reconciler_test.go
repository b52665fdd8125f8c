// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/ingest"
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

func hasSkip(skips []SkipRecord, row int, field, reason string) bool {
	for _, s := range skips {
		if s.Row == row && s.Field == field && s.Reason == reason {
			return true
		}
	}
	return false
}

func hasReason(skips []SkipRecord, row int, reason string) bool {
	for _, s := range skips {
		if s.Row == row && s.Reason == reason {
			return true
		}
	}
	return false
}

func mustReconcile(t *testing.T, tbl *dataset.Table, kind models.Kind) *Outcome {
	t.Helper()
	out, err := New(Config{}).Reconcile(tbl, kind, models.ProvenanceLoaded)
	if err != nil {
		t.Fatalf("Reconcile(%s) error = %v", kind, err)
	}
	return out
}

func TestReconcile_AnxietyFreeText(t *testing.T) {
	tbl := csvTable(t, "Age,How many hours a day do you play?,Gender\n"+
		"22 years old,more than 3 hours a day,Male\n"+
		",,\n")

	out := mustReconcile(t, tbl, models.KindAnxiety)

	if out.Dropped != 0 {
		t.Errorf("Dropped = %d, want 0", out.Dropped)
	}
	if out.Table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Table.Len())
	}

	first := out.Observations[0].(*models.ParticipantSurvey)
	if first.Age != 22 {
		t.Errorf("Age = %d, want 22", first.Age)
	}
	if first.GamingHoursDaily != 4.0 {
		t.Errorf("GamingHoursDaily = %v, want 4.0", first.GamingHoursDaily)
	}
	if first.Gender != models.GenderMale {
		t.Errorf("Gender = %q, want male", first.Gender)
	}
	if first.ParticipantID != "A0001" {
		t.Errorf("ParticipantID = %q, want generated A0001", first.ParticipantID)
	}

	second := out.Observations[1].(*models.ParticipantSurvey)
	if second.Age != DefaultAge || second.GamingHoursDaily != DefaultHoursDaily {
		t.Errorf("defaults = (%d, %v), want (%d, %v)", second.Age, second.GamingHoursDaily, DefaultAge, DefaultHoursDaily)
	}
	if !hasSkip(out.Skips, 1, fieldAge, ReasonDefaulted) {
		t.Errorf("missing age default record in %v", out.Skips)
	}
	if !hasSkip(out.Skips, 1, fieldHoursDaily, ReasonDefaulted) {
		t.Errorf("missing hours default record in %v", out.Skips)
	}
	if !hasSkip(out.Skips, TableRow, models.ScoreGADTotal, ReasonMissingColumn) {
		t.Errorf("missing table-level gad record in %v", out.Skips)
	}

	if got, _ := out.Table.Get(0, fieldHoursWeekly).Float(); got != 28 {
		t.Errorf("gaming_hours_weekly = %v, want 28", got)
	}
	if got := out.Table.Get(0, ColProvenance).String(); got != "loaded" {
		t.Errorf("data_provenance = %q, want loaded", got)
	}
	if got := out.Table.Get(0, colAnxietyLevel).String(); got != "Mild" {
		t.Errorf("anxiety_level = %q, want Mild (neutral 7)", got)
	}
}

func TestReconcile_DropOnlyWhenBothUnrecoverable(t *testing.T) {
	tbl := csvTable(t, "participant_id,age,hours_per_day,gad_total\n"+
		"p1,unknown,a lot,5\n"+
		"p2,unknown,3,5\n"+
		"p3,30,a lot,5\n")

	out := mustReconcile(t, tbl, models.KindAnxiety)

	if out.Dropped != 1 || out.Table.Len() != 2 {
		t.Fatalf("Dropped = %d, rows = %d, want 1 and 2", out.Dropped, out.Table.Len())
	}
	if !hasSkip(out.Skips, 0, "", ReasonDropped) {
		t.Errorf("row 0 not recorded as dropped: %v", out.Skips)
	}
	if !hasSkip(out.Skips, 1, fieldAge, ReasonUnrecoverable) {
		t.Errorf("row 1 age not recorded unrecoverable: %v", out.Skips)
	}
	if !hasSkip(out.Skips, 2, fieldHoursDaily, ReasonUnrecoverable) {
		t.Errorf("row 2 hours not recorded unrecoverable: %v", out.Skips)
	}

	p2 := out.Observations[0].(*models.ParticipantSurvey)
	if p2.ParticipantID != "p2" || p2.Age != DefaultAge || p2.GamingHoursDaily != 3 {
		t.Errorf("p2 = %+v", p2)
	}
}

func TestReconcile_ClampsAndWeekly(t *testing.T) {
	tbl := csvTable(t, "participant_id,age,weekly gaming hours,aggression_score\n"+
		"g1,5,350,55\n"+
		"g2,120,14,-3\n")

	out := mustReconcile(t, tbl, models.KindAggression)

	g1 := out.Observations[0].(*models.ParticipantSurvey)
	if g1.Age != 10 || g1.GamingHoursDaily != 24 {
		t.Errorf("g1 age/hours = (%d, %v), want (10, 24)", g1.Age, g1.GamingHoursDaily)
	}
	if s, _ := g1.Score(models.ScoreAggressionTotal); s.Value != 40 {
		t.Errorf("g1 aggression = %v, want 40", s.Value)
	}
	g2 := out.Observations[1].(*models.ParticipantSurvey)
	if g2.Age != 99 || g2.GamingHoursDaily != 2 {
		t.Errorf("g2 age/hours = (%d, %v), want (99, 2)", g2.Age, g2.GamingHoursDaily)
	}
	if s, _ := g2.Score(models.ScoreAggressionTotal); s.Value != 0 {
		t.Errorf("g2 aggression = %v, want 0", s.Value)
	}
}

func TestReconcile_LikertItems(t *testing.T) {
	tbl := csvTable(t, "id,Age,GAD1,GAD2,GAD3\n"+
		"1,20,Nearly every day,Several days,Not at all\n"+
		"2,21,Nearly every day,whatever,Several days\n")

	out := mustReconcile(t, tbl, models.KindAnxiety)

	if got, _ := out.Table.Get(0, models.ScoreGADTotal).Float(); got != 4 {
		t.Errorf("gad_total row 0 = %v, want 4", got)
	}
	if got, _ := out.Table.Get(1, models.ScoreGADTotal).Float(); got != 5 {
		t.Errorf("gad_total row 1 = %v, want 5", got)
	}
	if !hasSkip(out.Skips, 1, models.ScoreGADTotal, ReasonUnmatched) {
		t.Errorf("unmatched response not recorded: %v", out.Skips)
	}
}

func TestReconcile_Duplicates(t *testing.T) {
	tbl := csvTable(t, "participant_id,age,hours_per_day,gad_total\n"+
		"p1,20,2,5\n"+
		"p1,20,2,5\n"+
		"p1,21,2,5\n")

	out := mustReconcile(t, tbl, models.KindAnxiety)

	if out.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", out.Duplicates)
	}
	if out.Table.Len() != 2 {
		t.Errorf("rows = %d, want 2 (only exact copies removed)", out.Table.Len())
	}
	if !hasSkip(out.Skips, 1, "", ReasonDuplicate) {
		t.Errorf("duplicate not recorded: %v", out.Skips)
	}
}

func tablesEqual(t *testing.T, a, b *dataset.Table) {
	t.Helper()
	if strings.Join(a.Columns(), ",") != strings.Join(b.Columns(), ",") {
		t.Fatalf("columns differ:\n%v\n%v", a.Columns(), b.Columns())
	}
	if a.Len() != b.Len() {
		t.Fatalf("rows = %d and %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		for j, v := range a.Row(i) {
			if !v.Equal(b.Row(i)[j]) {
				t.Fatalf("row %d column %s: %q != %q", i, a.Columns()[j], v.String(), b.Row(i)[j].String())
			}
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, kind := range models.ParticipantKinds() {
		t.Run(string(kind), func(t *testing.T) {
			raw, err := ingest.Synthesize(kind, 42)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			first := mustReconcile(t, raw, kind)

			var buf bytes.Buffer
			if err := dataset.WriteCSV(&buf, first.Table); err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			reread, err := dataset.ReadCSV(&buf)
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}

			second := mustReconcile(t, reread, kind)
			tablesEqual(t, first.Table, second.Table)

			for _, obs := range second.Observations {
				p := obs.(*models.ParticipantSurvey)
				if !models.AgeRange.Contains(float64(p.Age)) || !models.DailyHoursRange.Contains(p.GamingHoursDaily) {
					t.Fatalf("%s out of domain: age %d hours %v", p.ParticipantID, p.Age, p.GamingHoursDaily)
				}
			}
		})
	}
}

func TestReconcile_PredictionScales(t *testing.T) {
	tbl := csvTable(t, "participant_id,age,gaming_hours_weekly,I play to escape,Escaping reality helps me,neuroticism\n"+
		"s1,19,21,Strongly agree,Agree,4.5\n")

	out := mustReconcile(t, tbl, models.KindPredictionScales)
	p := out.Observations[0].(*models.ParticipantSurvey)

	if p.GamingHoursDaily != 3 {
		t.Errorf("GamingHoursDaily = %v, want 3", p.GamingHoursDaily)
	}
	if s, ok := p.Score("escapism_score"); !ok || s.Value != 6.5 {
		t.Errorf("escapism_score = %v (%v), want 6.5", s.Value, ok)
	}
	if s, ok := p.Score("recreation_score"); !ok || s.Value != 4 {
		t.Errorf("recreation_score = %v (%v), want neutral 4", s.Value, ok)
	}
	if s, ok := p.Score("neuroticism"); !ok || s.Range != models.BigFiveRange {
		t.Errorf("neuroticism = %+v (%v), want Big Five range", s, ok)
	}
	if !out.Table.Has("neuroticism") {
		t.Error("cleaned table missing claimed trait column")
	}
}

func TestReconcile_Games(t *testing.T) {
	tbl := csvTable(t, "appid,name,genres,price,positive,negative,metacritic_score,release_date\n"+
		"570,Dota 2,Action;Strategy|Free to Play,Free,1200,300,0,\"Jul 9, 2013\"\n"+
		",No Id,,,,,,\n"+
		"730,,Action,$9.99,10,5,83,TBA\n")

	out := mustReconcile(t, tbl, models.KindSteamGames)

	if out.Table.Len() != 2 || out.Dropped != 1 {
		t.Fatalf("rows = %d dropped = %d, want 2 and 1", out.Table.Len(), out.Dropped)
	}
	if !hasSkip(out.Skips, 1, fieldGameID, ReasonMissingKey) {
		t.Errorf("missing id not recorded: %v", out.Skips)
	}

	dota := out.Observations[0].(*models.GameMetadata)
	if dota.Key() != "steam:570" {
		t.Errorf("Key() = %q, want steam:570", dota.Key())
	}
	if got := out.Table.Get(0, fieldGenres).String(); got != "Action, Strategy, Free to Play" {
		t.Errorf("genres = %q", got)
	}
	if dota.ReviewCount == nil || *dota.ReviewCount != 1500 {
		t.Errorf("ReviewCount = %v, want 1500", dota.ReviewCount)
	}
	if dota.Price == nil || *dota.Price != 0 {
		t.Errorf("Price = %v, want 0", dota.Price)
	}
	if dota.Rating != nil {
		t.Errorf("Rating = %v, want nil for metacritic 0 and no user rating", *dota.Rating)
	}
	if dota.ReleaseYear == nil || *dota.ReleaseYear != 2013 {
		t.Errorf("ReleaseYear = %v, want 2013", dota.ReleaseYear)
	}

	cs := out.Observations[1].(*models.GameMetadata)
	if cs.Title != UnknownTitle {
		t.Errorf("Title = %q, want %q", cs.Title, UnknownTitle)
	}
	if cs.Rating == nil || *cs.Rating != 83 {
		t.Errorf("Rating = %v, want 83", cs.Rating)
	}
	if !hasSkip(out.Skips, 2, colReleaseYear, ReasonUnrecoverable) {
		t.Errorf("bad release date not recorded: %v", out.Skips)
	}
}

func TestReconcile_RAWGRatingScale(t *testing.T) {
	tbl := csvTable(t, "id,name,rating,ratings_count\n3498,Grand Theft Auto V,4.47,6000\n")

	out := mustReconcile(t, tbl, models.KindGameMetadata)
	g := out.Observations[0].(*models.GameMetadata)

	if g.Source != models.GameSourceRAWG || g.ObservationKind() != models.KindGameMetadata {
		t.Errorf("source = %q kind = %q", g.Source, g.ObservationKind())
	}
	if g.Rating == nil || *g.Rating != 89.4 {
		t.Errorf("Rating = %v, want 89.4", g.Rating)
	}
}

func TestReconcile_Wellbeing(t *testing.T) {
	tbl := csvTable(t, "session_id,game,hours,wellbeing_score,stress_level,autonomy\n"+
		"w1,Minecraft,12,7,15,\n"+
		",Stardew Valley,5000,0.5,3,6\n")

	out := mustReconcile(t, tbl, models.KindWellbeing)

	if out.Table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Table.Len())
	}
	w1 := out.Observations[0].(*models.WellbeingSession)
	if w1.Metrics["stress_level"] != 10 {
		t.Errorf("stress_level = %v, want clamped 10", w1.Metrics["stress_level"])
	}
	if _, ok := w1.Metrics["autonomy"]; ok {
		t.Error("missing metric present in map")
	}
	if !out.Table.Get(0, "autonomy").IsNull() {
		t.Error("missing metric cell not null")
	}

	w2 := out.Observations[1].(*models.WellbeingSession)
	if w2.SessionID != "W0002" {
		t.Errorf("SessionID = %q, want W0002", w2.SessionID)
	}
	if w2.HoursPlayed != 1000 {
		t.Errorf("HoursPlayed = %v, want 1000", w2.HoursPlayed)
	}
	if w2.Metrics["wellbeing_score"] != 1 {
		t.Errorf("wellbeing_score = %v, want 1", w2.Metrics["wellbeing_score"])
	}
}

func TestReconcile_Domains(t *testing.T) {
	tbl := csvTable(t, "domainName,registrarName,createdDate,expiresDate,nameServers,category\n"+
		"https://WWW.Steam.com/,MarkMonitor Inc.,2003-09-12T07:00:00Z,garbage,\"NS1.VALVE.NET, ns2.valve.net.\",\n"+
		"ubisoft.com,CSC,1996-10-04,2030-01-01,,gaming_company\n"+
		"not a domain,,,,,\n"+
		",,,,,\n")

	out := mustReconcile(t, tbl, models.KindDomains)

	if out.Table.Len() != 2 {
		t.Fatalf("rows = %d, want 2: %v", out.Table.Len(), out.Skips)
	}
	steam := out.Observations[0].(*models.DomainRegistration)
	if steam.Domain != "www.steam.com" {
		t.Errorf("Domain = %q, want www.steam.com", steam.Domain)
	}
	if steam.Category != models.CategoryGamingPlatform {
		t.Errorf("Category = %q, want gaming_platform", steam.Category)
	}
	if got := out.Table.Get(0, fieldCreated).String(); got != "2003-09-12T07:00:00Z" {
		t.Errorf("created_at = %q", got)
	}
	if got := out.Table.Get(0, fieldNameServers).String(); got != "ns1.valve.net|ns2.valve.net" {
		t.Errorf("name_servers = %q", got)
	}
	if !hasSkip(out.Skips, 0, fieldExpires, ReasonUnrecoverable) {
		t.Errorf("bad expiry not recorded: %v", out.Skips)
	}

	ubi := out.Observations[1].(*models.DomainRegistration)
	if ubi.Category != models.CategoryGamingCompany {
		t.Errorf("Category = %q, want gaming_company", ubi.Category)
	}

	if !hasReason(out.Skips, 2, ReasonInvalid) {
		t.Errorf("invalid domain not recorded: %v", out.Skips)
	}
	if !hasSkip(out.Skips, 3, fieldDomain, ReasonMissingKey) {
		t.Errorf("missing domain not recorded: %v", out.Skips)
	}
}

func TestReconcile_UnknownKind(t *testing.T) {
	_, err := New(Config{}).Reconcile(dataset.New([]string{"a"}), models.Kind("bogus"), models.ProvenanceLoaded)
	if err == nil {
		t.Error("Reconcile() error = nil, want error for unknown kind")
	}
}

func TestReconcileKind_WritesArtifacts(t *testing.T) {
	staged := t.TempDir()
	cleaned := t.TempDir()
	ctx := context.Background()

	loader := ingest.NewLoader(ingest.Config{SourceDir: t.TempDir(), OutputDir: staged})
	if _, err := loader.Stage(ctx, models.KindPredictionScales); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	r := New(Config{InputDir: staged, OutputDir: cleaned, WriteSpreadsheet: true})
	out, err := r.ReconcileKind(ctx, models.KindPredictionScales)
	if err != nil {
		t.Fatalf("ReconcileKind() error = %v", err)
	}
	if out.Provenance != models.ProvenanceSynthetic {
		t.Errorf("Provenance = %q, want synthetic", out.Provenance)
	}
	if out.Output != filepath.Join(cleaned, "prediction_scales_clean.csv") {
		t.Errorf("Output = %q", out.Output)
	}
	if _, err := os.Stat(filepath.Join(cleaned, SpreadsheetFileName)); err != nil {
		t.Errorf("spreadsheet not written: %v", err)
	}

	tbl, err := OpenCleaned(cleaned, models.KindPredictionScales)
	if err != nil {
		t.Fatalf("OpenCleaned() error = %v", err)
	}
	if tbl.Len() != out.Table.Len() {
		t.Errorf("OpenCleaned rows = %d, want %d", tbl.Len(), out.Table.Len())
	}
	if got := tbl.Get(0, ColProvenance).String(); got != "synthetic" {
		t.Errorf("data_provenance = %q, want synthetic", got)
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	staged := t.TempDir()
	ctx := context.Background()

	loader := ingest.NewLoader(ingest.Config{SourceDir: t.TempDir(), OutputDir: staged})
	if _, err := loader.Stage(ctx, models.KindAnxiety); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	r := New(Config{InputDir: staged, OutputDir: t.TempDir()})
	outcomes, err := r.Run(ctx, []models.Kind{models.KindAnxiety, models.KindAggression})
	if err == nil {
		t.Fatal("Run() error = nil, want error for unstaged aggression")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run() error = %v, want os.ErrNotExist", err)
	}
	if len(outcomes) != 1 || outcomes[0].Kind != models.KindAnxiety {
		t.Errorf("outcomes = %d, want anxiety only", len(outcomes))
	}
}
