// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// scoreSpec ties a canonical score column to the Likert items that can
// rebuild it when no score column exists.
type scoreSpec struct {
	composite  Composite
	scoreField string
	itemsField string
	itemCap    int
}

type participantSchema struct {
	kind   models.Kind
	prov   models.Provenance
	scores []scoreSpec
	traits []string // Big Five traits claimed in this table

	// Set by prepare.
	hoursField  string
	hoursWeekly bool
}

func newParticipantSchema(kind models.Kind, prov models.Provenance) *participantSchema {
	s := &participantSchema{kind: kind, prov: prov}
	switch kind {
	case models.KindAnxiety:
		s.scores = []scoreSpec{{gadComposite, models.ScoreGADTotal, fieldGADItems, 7}}
	case models.KindAggression:
		s.scores = []scoreSpec{{aggressionComposite, models.ScoreAggressionTotal, fieldAggItems, 10}}
	case models.KindPredictionScales:
		for _, sub := range models.PredictionSubscales() {
			s.scores = append(s.scores, scoreSpec{subscaleComposite(sub), sub, itemsField(sub), 6})
		}
	}
	return s
}

func (s *participantSchema) columns() []string {
	cols := []string{
		fieldParticipantID, fieldAge, fieldGender, fieldHoursDaily, fieldHoursWeekly, fieldPreference,
	}
	for _, sc := range s.scores {
		cols = append(cols, sc.scoreField)
	}
	cols = append(cols, s.traits...)
	cols = append(cols, colAgeGroup, colBehaviorCategory, colWellnessScore)
	if s.kind == models.KindAnxiety {
		cols = append(cols, colAnxietyLevel)
	}
	return cols
}

// genericHoursWeekly reports how an unqualified "hours" column is read.
// The anxiety and scales surveys ask about a typical week; the aggression
// survey asks about a typical day.
func genericHoursWeekly(kind models.Kind) bool {
	return kind != models.KindAggression
}

func (s *participantSchema) prepare(claimed map[string][]string) []SkipRecord {
	var skips []SkipRecord
	missing := func(field, detail string) {
		skips = append(skips, SkipRecord{Row: TableRow, Field: field, Reason: ReasonMissingColumn, Detail: detail})
	}

	s.traits = nil
	for _, t := range models.BigFiveTraits() {
		if len(claimed[t]) > 0 {
			s.traits = append(s.traits, t)
		}
	}

	switch {
	case len(claimed[fieldHoursDaily]) > 0:
		s.hoursField, s.hoursWeekly = fieldHoursDaily, false
	case len(claimed[fieldHoursWeekly]) > 0:
		s.hoursField, s.hoursWeekly = fieldHoursWeekly, true
	case len(claimed[fieldHoursGeneric]) > 0:
		s.hoursField, s.hoursWeekly = fieldHoursGeneric, genericHoursWeekly(s.kind)
	default:
		s.hoursField = ""
		missing(fieldHoursDaily, fmt.Sprintf("no hours column, default %.1f applied", DefaultHoursDaily))
	}

	if len(claimed[fieldParticipantID]) == 0 {
		missing(fieldParticipantID, "no id column, ids generated")
	}
	if len(claimed[fieldAge]) == 0 {
		missing(fieldAge, fmt.Sprintf("no age column, default %d applied", DefaultAge))
	}
	if len(claimed[fieldGender]) == 0 {
		missing(fieldGender, "no gender column, recorded as unknown")
	}
	for _, sc := range s.scores {
		if len(claimed[sc.scoreField]) == 0 && len(claimed[sc.itemsField]) == 0 {
			missing(sc.scoreField, "no score or item columns, scored neutral")
		}
	}
	return skips
}

func (s *participantSchema) reconcileRow(v rowView, res *rowResult) {
	cells := make(map[string]dataset.Value)
	obs := &models.ParticipantSurvey{Source: s.kind, Provenance: s.prov}

	obs.ParticipantID = identifier(v.value(fieldParticipantID))
	if obs.ParticipantID == "" {
		obs.ParticipantID = generatedID(s.kind.IDPrefix(), v.index)
		if v.has(fieldParticipantID) {
			res.note(fieldParticipantID, ReasonDefaulted, "generated "+obs.ParticipantID)
		}
	}

	age, ageStatus := parseAge(v.value(fieldAge))
	hours, hoursStatus := parseHours(v.value(s.hoursField))
	if ageStatus == parsedUnrecoverable && hoursStatus == parsedUnrecoverable {
		res.note("", ReasonDropped, "age and hours both unrecoverable")
		return
	}

	switch ageStatus {
	case parsedMissing:
		age = DefaultAge
		if v.has(fieldAge) {
			res.note(fieldAge, ReasonDefaulted, strconv.Itoa(DefaultAge))
		}
	case parsedUnrecoverable:
		res.note(fieldAge, ReasonUnrecoverable, fmt.Sprintf("%q, default %d applied", v.value(fieldAge).String(), DefaultAge))
		age = DefaultAge
	}
	obs.Age = int(models.AgeRange.Clamp(float64(age)))

	switch hoursStatus {
	case parsedMissing:
		if v.has(s.hoursField) {
			res.note(fieldHoursDaily, ReasonDefaulted, strconv.FormatFloat(DefaultHoursDaily, 'f', -1, 64))
		}
		obs.GamingHoursDaily = DefaultHoursDaily
	case parsedUnrecoverable:
		res.note(fieldHoursDaily, ReasonUnrecoverable, fmt.Sprintf("%q, default %.1f applied", v.value(s.hoursField).String(), DefaultHoursDaily))
		obs.GamingHoursDaily = DefaultHoursDaily
	default:
		if s.hoursWeekly {
			hours /= 7
		}
		obs.GamingHoursDaily = round2(models.DailyHoursRange.Clamp(hours))
	}

	obs.Gender = parseGender(v.value(fieldGender))
	if pref := v.value(fieldPreference); !pref.IsNull() {
		obs.GamingPreference = strings.TrimSpace(pref.String())
	}

	for _, sc := range s.scores {
		obs.Scores = append(obs.Scores, s.score(v, res, sc))
	}
	for _, t := range s.traits {
		if f, ok := parseFloat(v.value(t)); ok {
			obs.Scores = append(obs.Scores, models.ScaleValue{Name: t, Value: round2(models.BigFiveRange.Clamp(f)), Range: models.BigFiveRange})
		}
	}

	cells[fieldParticipantID] = dataset.String(obs.ParticipantID)
	cells[fieldAge] = dataset.Int(int64(obs.Age))
	cells[fieldGender] = dataset.String(string(obs.Gender))
	cells[fieldHoursDaily] = dataset.Float(obs.GamingHoursDaily)
	if obs.GamingPreference != "" {
		cells[fieldPreference] = dataset.String(obs.GamingPreference)
	}
	for _, sv := range obs.Scores {
		cells[sv.Name] = dataset.Float(sv.Value)
	}
	s.derive(obs, cells, res)

	res.obs = observationRow{model: obs, cells: cells}
}

// score reads the canonical score column when it holds a number and
// otherwise rebuilds the score from its Likert items.
func (s *participantSchema) score(v rowView, res *rowResult, sc scoreSpec) models.ScaleValue {
	sv := models.ScaleValue{Name: sc.scoreField, Range: sc.composite.Range}
	if v.has(sc.scoreField) {
		if f, ok := parseFloat(v.value(sc.scoreField)); ok {
			sv.Value = round2(sc.composite.Range.Clamp(f))
			return sv
		}
	}

	items := v.values(sc.itemsField)
	value, unmatched := sc.composite.Score(items, sc.itemCap)
	sv.Value = value
	switch {
	case unmatched > 0:
		res.note(sc.scoreField, ReasonUnmatched, fmt.Sprintf("%d of %d responses scored neutral", unmatched, len(items)))
	case len(items) == 0 && v.has(sc.scoreField):
		res.note(sc.scoreField, ReasonDefaulted, "unreadable score, scored neutral")
	}
	return sv
}

// derive fills the derived columns. A failure nulls only that column.
func (s *participantSchema) derive(obs *models.ParticipantSurvey, cells map[string]dataset.Value, res *rowResult) {
	derivedFailed := func(field string, err error) {
		cells[field] = dataset.Null()
		res.note(field, ReasonDerived, err.Error())
	}

	if group, err := AgeGroup(obs.Age); err != nil {
		derivedFailed(colAgeGroup, err)
	} else {
		cells[colAgeGroup] = dataset.String(group)
	}

	weekly := round2(obs.GamingHoursDaily * 7)
	cells[fieldHoursWeekly] = dataset.Float(weekly)
	if cat, err := BehaviorCategory(weekly); err != nil {
		derivedFailed(colBehaviorCategory, err)
	} else {
		cells[colBehaviorCategory] = dataset.String(cat)
	}

	var gad *float64
	if sv, ok := obs.Score(models.ScoreGADTotal); ok {
		g := sv.Value
		gad = &g
		if level, err := AnxietyLevel(g); err != nil {
			derivedFailed(colAnxietyLevel, err)
		} else {
			cells[colAnxietyLevel] = dataset.String(level)
		}
	}

	if w, err := WellnessScore(obs.GamingHoursDaily, obs.Age, gad); err != nil {
		derivedFailed(colWellnessScore, err)
	} else {
		cells[colWellnessScore] = dataset.Float(w)
	}
}

// identifier trims an id cell. Whole floats written by spreadsheets
// ("12.0") are reduced to their integer text.
func identifier(v dataset.Value) string {
	if v.IsNull() {
		return ""
	}
	id := strings.TrimSpace(v.String())
	if strings.Contains(id, ".") {
		if n, ok := v.Int(); ok {
			return strconv.FormatInt(n, 10)
		}
	}
	return id
}

func generatedID(prefix string, row int) string {
	return fmt.Sprintf("%s%04d", prefix, row+1)
}

var (
	femaleTokens = map[string]bool{"female": true, "woman": true, "women": true, "girl": true, "f": true}
	maleTokens   = map[string]bool{"male": true, "man": true, "men": true, "boy": true, "m": true}
	otherTokens  = map[string]bool{"other": true, "nonbinary": true, "binary": true, "enby": true, "genderqueer": true, "agender": true}
)

// parseGender maps free-text gender onto the closed set. Female words are
// checked first since "female" contains "male".
func parseGender(v dataset.Value) models.Gender {
	if v.IsNull() {
		return models.GenderUnknown
	}
	tokens := labelTokens(v.String())
	match := func(set map[string]bool) bool {
		for tok := range tokens {
			if set[tok] {
				return true
			}
		}
		return false
	}
	switch {
	case match(femaleTokens):
		return models.GenderFemale
	case match(maleTokens):
		return models.GenderMale
	case match(otherTokens):
		return models.GenderOther
	}
	return models.GenderUnknown
}
