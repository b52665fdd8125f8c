// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"strconv"
	"strings"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// LikertPattern maps a response phrase to an item score.
type LikertPattern struct {
	Phrase string
	Score  float64
}

// LikertScale scores free-text survey responses. Patterns are tried in
// order, so a phrase that contains another ("disagree" contains "agree")
// must come first, and "neither ... nor ..." phrases lead the list.
type LikertScale struct {
	Name     string
	Item     models.ScaleRange
	Neutral  float64
	Patterns []LikertPattern
}

// GADFrequency is the GAD-7 "over the last two weeks" frequency scale.
var GADFrequency = LikertScale{
	Name:    "gad_frequency",
	Item:    models.ScaleRange{Min: 0, Max: 3},
	Neutral: 1,
	Patterns: []LikertPattern{
		{"nearly every day", 3},
		{"more than half", 2},
		{"several days", 1},
		{"not at all", 0},
	},
}

// Agreement is the five-point characteristic/agreement scale scored 0-4.
var Agreement = LikertScale{
	Name:    "agreement",
	Item:    models.ScaleRange{Min: 0, Max: 4},
	Neutral: 2,
	Patterns: []LikertPattern{
		{"neither", 2},
		{"extremely uncharacteristic", 0},
		{"somewhat uncharacteristic", 1},
		{"uncharacteristic", 1},
		{"extremely characteristic", 4},
		{"somewhat characteristic", 3},
		{"characteristic", 3},
		{"strongly disagree", 0},
		{"disagree", 1},
		{"neutral", 2},
		{"strongly agree", 4},
		{"agree", 3},
		{"never", 0},
		{"rarely", 1},
		{"sometimes", 2},
		{"often", 3},
		{"always", 4},
	},
}

// SevenPoint is the seven-point agreement scale scored 1-7.
var SevenPoint = LikertScale{
	Name:    "seven_point",
	Item:    models.SevenPointRange,
	Neutral: 4,
	Patterns: []LikertPattern{
		{"neither", 4},
		{"neutral", 4},
		{"strongly disagree", 1},
		{"somewhat disagree", 3},
		{"slightly disagree", 3},
		{"disagree", 2},
		{"strongly agree", 7},
		{"somewhat agree", 5},
		{"slightly agree", 5},
		{"agree", 6},
	},
}

// Score returns the item score for a response. Numeric responses inside the
// item range are taken as-is. ok is false when the response is missing or
// unmatched, in which case the neutral score is returned.
func (s LikertScale) Score(v dataset.Value) (score float64, ok bool) {
	if v.IsNull() {
		return s.Neutral, false
	}
	text := strings.ToLower(strings.TrimSpace(v.String()))
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		if s.Item.Contains(n) {
			return n, true
		}
		return s.Neutral, false
	}
	for _, p := range s.Patterns {
		if strings.Contains(text, p.Phrase) {
			return p.Score, true
		}
	}
	return s.Neutral, false
}

// aggregate combines item scores.
type aggregate int

const (
	aggregateSum aggregate = iota
	aggregateMean
)

// Composite is a score built from Likert items.
type Composite struct {
	Name      string
	Scale     LikertScale
	Aggregate aggregate
	Range     models.ScaleRange
}

var (
	gadComposite = Composite{
		Name:      models.ScoreGADTotal,
		Scale:     GADFrequency,
		Aggregate: aggregateSum,
		Range:     models.AnxietyRange,
	}
	aggressionComposite = Composite{
		Name:      models.ScoreAggressionTotal,
		Scale:     Agreement,
		Aggregate: aggregateSum,
		Range:     models.AggressionRange,
	}
)

func subscaleComposite(name string) Composite {
	return Composite{Name: name, Scale: SevenPoint, Aggregate: aggregateMean, Range: models.SevenPointRange}
}

// Score combines the item responses. unmatched counts responses that fell
// back to the neutral score. With no items at all the composite is the
// neutral score for a full set of itemCap items.
func (c Composite) Score(items []dataset.Value, itemCap int) (value float64, unmatched int) {
	if len(items) == 0 {
		if c.Aggregate == aggregateMean {
			return c.Range.Clamp(c.Scale.Neutral), 0
		}
		return c.Range.Clamp(c.Scale.Neutral * float64(itemCap)), 0
	}
	total := 0.0
	for _, item := range items {
		s, ok := c.Scale.Score(item)
		if !ok {
			unmatched++
		}
		total += s
	}
	if c.Aggregate == aggregateMean {
		total /= float64(len(items))
	}
	return c.Range.Clamp(round2(total)), unmatched
}
