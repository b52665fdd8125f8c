// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package models

import (
	"math"
	"strconv"
	"time"
)

// Observation is one canonical, reconciled record. The concrete type is one of
// *ParticipantSurvey, *GameMetadata, *WellbeingSession or *DomainRegistration.
type Observation interface {
	// ObservationKind returns the dataset kind the observation came from.
	ObservationKind() Kind
	// Key returns the identifier the observation is unique by.
	Key() string
}

// ScaleRange is the closed interval a scored field must fall in.
type ScaleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Well-known domains.
var (
	AgeRange             = ScaleRange{Min: 10, Max: 99}
	DailyHoursRange      = ScaleRange{Min: 0, Max: 24}
	AnxietyRange         = ScaleRange{Min: 0, Max: 21}
	AggressionRange      = ScaleRange{Min: 0, Max: 40}
	SevenPointRange      = ScaleRange{Min: 1, Max: 7}
	BigFiveRange         = ScaleRange{Min: 1, Max: 5}
	WellbeingMetricRange = ScaleRange{Min: 1, Max: 10}
	SessionHoursRange    = ScaleRange{Min: 0, Max: 1000}
	RatingRange          = ScaleRange{Min: 0, Max: 100}
	WellnessRange        = ScaleRange{Min: 0, Max: 100}
)

// Clamp forces v into the range. NaN clamps to Min.
func (r ScaleRange) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r ScaleRange) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// ScaleValue is a named score with its domain.
type ScaleValue struct {
	Name  string     `json:"name" validate:"required"`
	Value float64    `json:"value"`
	Range ScaleRange `json:"range"`
}

// Canonical score names.
const (
	ScoreGADTotal        = "gad_total"
	ScoreAggressionTotal = "aggression_score"
)

// PredictionSubscales lists the seven prediction subscales in output order.
func PredictionSubscales() []string {
	return []string{
		"gaming_addiction_risk",
		"social_gaming_score",
		"escapism_score",
		"achievement_score",
		"immersion_score",
		"skill_development_score",
		"recreation_score",
	}
}

// BigFiveTraits lists the personality traits that may accompany prediction scales.
func BigFiveTraits() []string {
	return []string{"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism"}
}

// ParticipantSurvey is one survey respondent with exactly one domain score bundle.
type ParticipantSurvey struct {
	Source           Kind         `json:"source" validate:"oneof=anxiety aggression prediction_scales"`
	ParticipantID    string       `json:"participant_id" validate:"required"`
	Age              int          `json:"age" validate:"gte=10,lte=99"`
	Gender           Gender       `json:"gender" validate:"gender"`
	GamingHoursDaily float64      `json:"gaming_hours_daily" validate:"gte=0,lte=24"`
	GamingPreference string       `json:"gaming_preference,omitempty"`
	Scores           []ScaleValue `json:"scores" validate:"required,min=1,dive"`
	Provenance       Provenance   `json:"data_provenance" validate:"oneof=loaded synthetic"`
}

// ObservationKind implements Observation.
func (p *ParticipantSurvey) ObservationKind() Kind { return p.Source }

// Key implements Observation.
func (p *ParticipantSurvey) Key() string { return p.ParticipantID }

// Score returns the named score.
func (p *ParticipantSurvey) Score(name string) (ScaleValue, bool) {
	for _, s := range p.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return ScaleValue{}, false
}

// Game sources.
const (
	GameSourceSteam = "steam"
	GameSourceRAWG  = "rawg"
)

// GameMetadata is one game from a storefront or metadata API. Nil pointers are
// unknown values.
type GameMetadata struct {
	Source               string   `json:"source" validate:"oneof=steam rawg"`
	GameID               int64    `json:"game_id" validate:"gt=0"`
	Title                string   `json:"title" validate:"required"`
	Genres               []string `json:"genres,omitempty"`
	Developer            string   `json:"developer,omitempty"`
	Price                *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Rating               *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100"`
	ReviewCount          *int64   `json:"review_count,omitempty" validate:"omitempty,gte=0"`
	ReleaseYear          *int     `json:"release_year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	IsMultiplayer        *bool    `json:"is_multiplayer,omitempty"`
	HasMicrotransactions *bool    `json:"has_microtransactions,omitempty"`
}

// ObservationKind implements Observation.
func (g *GameMetadata) ObservationKind() Kind {
	if g.Source == GameSourceRAWG {
		return KindGameMetadata
	}
	return KindSteamGames
}

// Key implements Observation. Game IDs are only unique within a source.
func (g *GameMetadata) Key() string {
	return g.Source + ":" + strconv.FormatInt(g.GameID, 10)
}

// WellbeingMetrics lists the session sub-metrics in output order.
func WellbeingMetrics() []string {
	return []string{
		"wellbeing_score",
		"life_satisfaction",
		"affect_balance",
		"autonomy",
		"competence",
		"relatedness",
		"intrinsic_motivation",
		"extrinsic_motivation",
		"stress_level",
		"social_connection_score",
		"achievement_satisfaction",
	}
}

// WellbeingSession is one play session with self-reported sub-metrics.
type WellbeingSession struct {
	SessionID   string             `json:"session_id" validate:"required"`
	GameTitle   string             `json:"game_title"`
	HoursPlayed float64            `json:"hours_played" validate:"gte=0,lte=1000"`
	Metrics     map[string]float64 `json:"metrics" validate:"dive,gte=1,lte=10"`
	Provenance  Provenance         `json:"data_provenance" validate:"oneof=loaded synthetic"`
}

// ObservationKind implements Observation.
func (w *WellbeingSession) ObservationKind() Kind { return KindWellbeing }

// Key implements Observation.
func (w *WellbeingSession) Key() string { return w.SessionID }

// DomainRegistration is one WHOIS record.
type DomainRegistration struct {
	Domain      string         `json:"domain" validate:"required,fqdn,lowercase"`
	Registrar   string         `json:"registrar,omitempty"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	Status      string         `json:"status,omitempty"`
	NameServers []string       `json:"name_servers,omitempty"`
	Country     string         `json:"registrant_country,omitempty"`
	Org         string         `json:"registrant_organization,omitempty"`
	Category    DomainCategory `json:"category" validate:"domaincategory"`
}

// ObservationKind implements Observation.
func (d *DomainRegistration) ObservationKind() Kind { return KindDomains }

// Key implements Observation.
func (d *DomainRegistration) Key() string { return d.Domain }
