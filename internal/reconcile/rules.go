// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tomtom215/respawn/internal/models"
)

// MatchMode controls how a rule keyword is compared with a column label.
type MatchMode int

const (
	// MatchSubstring matches when every term of the keyword occurs anywhere in
	// the lowercased label.
	MatchSubstring MatchMode = iota
	// MatchToken matches when every term equals a whole word of the label.
	// Used for short terms such as "age" that would otherwise hit "image" or
	// "language".
	MatchToken
)

// Rule maps source columns onto one canonical field.
//
// Exact names are compared against the normalized label (lowercase, runs of
// punctuation folded to "_") and are claimed before any keyword matching.
// Each keyword is a space-separated list of terms that must all match.
type Rule struct {
	Field    string
	Exact    []string
	Keywords []string
	Match    MatchMode
	Priority int
	Cap      int // max columns claimed; 0 means 1
}

func (r Rule) capacity() int {
	if r.Cap <= 0 {
		return 1
	}
	return r.Cap
}

// Canonical participant fields claimed by rules.
const (
	fieldParticipantID = "participant_id"
	fieldAge           = "age"
	fieldGender        = "gender"
	fieldHoursDaily    = "gaming_hours_daily"
	fieldHoursWeekly   = "gaming_hours_weekly"
	fieldHoursGeneric  = "gaming_hours"
	fieldPreference    = "gaming_preference"
	fieldGADItems      = "gad_items"
	fieldAggItems      = "aggression_items"
)

// itemsField names the Likert item field that feeds a subscale.
func itemsField(subscale string) string { return subscale + "_items" }

func participantRules(kind models.Kind) []Rule {
	rules := []Rule{
		{
			Field:    fieldParticipantID,
			Exact:    []string{"participant_id", "respondent_id", "user_id", "subject_id", "id", "s_no", "sno"},
			Keywords: []string{"participant id", "participant number", "respondent id", "subject id", "user id"},
			Match:    MatchToken,
			Priority: 10,
		},
		{
			Field:    fieldAge,
			Exact:    []string{"age", "participant_age", "respondent_age", "user_age"},
			Keywords: []string{"age", "how old"},
			Match:    MatchToken,
			Priority: 20,
		},
		{
			Field:    fieldGender,
			Exact:    []string{"gender", "sex"},
			Keywords: []string{"gender", "sex"},
			Match:    MatchToken,
			Priority: 30,
		},
		{
			Field:    fieldHoursDaily,
			Exact:    []string{"gaming_hours_daily", "daily_gaming_hours", "hours_per_day"},
			Keywords: []string{"hour day", "hour daily", "daily play", "play day"},
			Priority: 40,
		},
		{
			Field:    fieldHoursWeekly,
			Exact:    []string{"gaming_hours_weekly", "weekly_gaming_hours", "hours_per_week", "gaming_hours_per_week"},
			Keywords: []string{"hour week", "weekly hour", "play week"},
			Priority: 41,
		},
		{
			Field:    fieldHoursGeneric,
			Exact:    []string{"hours", "gaming_hours", "total_gaming_hours", "playtime"},
			Keywords: []string{"hour", "playtime", "time spent"},
			Priority: 42,
		},
		{
			Field:    fieldPreference,
			Exact:    []string{"gaming_preference", "game_preference", "preferred_genre", "favorite_genre", "game_type_preference"},
			Keywords: []string{"preference", "genre", "game type", "usually play", "favorite game", "favourite game"},
			Priority: 50,
		},
	}

	switch kind {
	case models.KindAnxiety:
		rules = append(rules,
			Rule{
				Field:    models.ScoreGADTotal,
				Exact:    []string{"gad_total", "gad_t", "gad_score", "anxiety_score", "gad7_total"},
				Keywords: []string{"gad total", "anxiety score"},
				Priority: 60,
			},
			Rule{
				Field: fieldGADItems,
				Keywords: []string{
					"gad", "nervous", "anxious", "on edge", "worrying", "worry", "trouble relaxing",
					"restless", "irritable", "annoyed", "afraid",
				},
				Priority: 61,
				Cap:      7,
			},
		)
	case models.KindAggression:
		rules = append(rules,
			Rule{
				Field:    models.ScoreAggressionTotal,
				Exact:    []string{"aggression_score", "aggression_total", "aggression", "bpaq_total"},
				Keywords: []string{"aggression score", "aggression total"},
				Priority: 60,
			},
			Rule{
				Field: fieldAggItems,
				Keywords: []string{
					"aggress", "hit another", "hit back", "hits me", "fight", "temper", "argue", "anger", "angry", "violen",
					"strike", "threat", "provoke", "flare", "hothead", "explode", "hostil", "jealous",
				},
				Priority: 61,
				Cap:      10,
			},
			// Game played is captured as preference when no genre column exists.
			Rule{
				Field:    fieldPreference,
				Keywords: []string{"video game", "game you"},
				Priority: 55,
			},
		)
	case models.KindPredictionScales:
		for i, sub := range models.PredictionSubscales() {
			rules = append(rules,
				Rule{Field: sub, Exact: []string{sub}, Priority: 60 + i},
				Rule{Field: itemsField(sub), Keywords: subscaleKeywords[sub], Priority: 70 + i, Cap: 6},
			)
		}
		for i, trait := range models.BigFiveTraits() {
			rules = append(rules, Rule{Field: trait, Exact: []string{trait}, Keywords: []string{trait}, Priority: 80 + i})
		}
	}
	return rules
}

var subscaleKeywords = map[string][]string{
	"gaming_addiction_risk":   {"addict", "compuls", "preoccup", "can't stop", "cannot stop"},
	"social_gaming_score":     {"social", "friends", "together", "team"},
	"escapism_score":          {"escap", "forget", "avoid", "get away"},
	"achievement_score":       {"achiev", "progress", "level up", "reward", "unlock"},
	"immersion_score":         {"immers", "story", "lose track", "absorb"},
	"skill_development_score": {"skill", "improve", "learn", "master"},
	"recreation_score":        {"recreat", "relax", "fun", "enjoy", "leisure"},
}

// Canonical game fields.
const (
	fieldGameID        = "game_id"
	fieldTitle         = "title"
	fieldGenres        = "genres"
	fieldDeveloper     = "developer"
	fieldPrice         = "price"
	fieldMetacritic    = "metacritic"
	fieldRating        = "rating"
	fieldReviewCount   = "review_count"
	fieldPositive      = "positive_reviews"
	fieldNegative      = "negative_reviews"
	fieldReleased      = "released"
	fieldMultiplayer   = "is_multiplayer"
	fieldMicrotransact = "has_microtransactions"
)

func gameRules() []Rule {
	return []Rule{
		{Field: fieldGameID, Exact: []string{"game_id", "app_id", "appid", "steam_appid", "rawg_id", "id"}, Keywords: []string{"id"}, Match: MatchToken, Priority: 10},
		{Field: fieldTitle, Exact: []string{"title", "name", "game_title", "game_name"}, Keywords: []string{"title", "name"}, Match: MatchToken, Priority: 20},
		{Field: fieldGenres, Exact: []string{"genres", "genre"}, Keywords: []string{"genre"}, Priority: 30},
		{Field: fieldDeveloper, Exact: []string{"developer", "developers"}, Keywords: []string{"developer", "studio"}, Priority: 31},
		{Field: fieldPrice, Exact: []string{"price", "final_price", "price_usd"}, Keywords: []string{"price"}, Priority: 40},
		{Field: fieldMetacritic, Exact: []string{"metacritic_score", "metacritic"}, Keywords: []string{"metacritic"}, Priority: 41},
		{Field: fieldRating, Exact: []string{"rating", "user_rating", "score"}, Keywords: []string{"rating"}, Match: MatchToken, Priority: 42},
		{Field: fieldPositive, Exact: []string{"positive_reviews", "positive"}, Priority: 43},
		{Field: fieldNegative, Exact: []string{"negative_reviews", "negative"}, Priority: 44},
		{Field: fieldReviewCount, Exact: []string{"review_count", "ratings_count", "total_reviews", "recommendations", "num_reviews"}, Keywords: []string{"review", "recommendation"}, Priority: 45},
		{Field: fieldReleased, Exact: []string{"release_date", "released", "release_year", "year"}, Keywords: []string{"release"}, Priority: 50},
		{Field: fieldMultiplayer, Exact: []string{"is_multiplayer", "multiplayer"}, Keywords: []string{"multiplayer", "multi player"}, Priority: 60},
		{Field: fieldMicrotransact, Exact: []string{"has_microtransactions", "microtransactions"}, Keywords: []string{"microtransaction", "in app", "in-app"}, Priority: 61},
	}
}

// Canonical wellbeing fields.
const (
	fieldSessionID   = "session_id"
	fieldGameTitle   = "game_title"
	fieldHoursPlayed = "hours_played"
)

var metricSynonyms = map[string][]string{
	"wellbeing_score":          {"wellbeing", "well being", "well-being"},
	"life_satisfaction":        {"life satisfaction", "satisfaction with life"},
	"affect_balance":           {"affect"},
	"autonomy":                 {"autonomy"},
	"competence":               {"competence"},
	"relatedness":              {"relatedness"},
	"intrinsic_motivation":     {"intrinsic"},
	"extrinsic_motivation":     {"extrinsic"},
	"stress_level":             {"stress"},
	"social_connection_score":  {"social connection", "social"},
	"achievement_satisfaction": {"achievement"},
}

func wellbeingRules() []Rule {
	rules := []Rule{
		{Field: fieldSessionID, Exact: []string{"session_id", "participant_id", "user_id", "respondent_id", "id"}, Keywords: []string{"session", "participant", "id"}, Match: MatchToken, Priority: 10},
		{Field: fieldGameTitle, Exact: []string{"game_title", "game", "title", "game_name"}, Keywords: []string{"game", "title"}, Match: MatchToken, Priority: 20},
		{Field: fieldHoursPlayed, Exact: []string{"hours_played", "hours", "playtime", "play_time"}, Keywords: []string{"hour", "playtime"}, Priority: 30},
	}
	for i, m := range models.WellbeingMetrics() {
		rules = append(rules, Rule{Field: m, Exact: []string{m}, Keywords: metricSynonyms[m], Priority: 40 + i})
	}
	return rules
}

// Canonical domain fields.
const (
	fieldDomain      = "domain"
	fieldRegistrar   = "registrar"
	fieldCreated     = "created_at"
	fieldExpires     = "expires_at"
	fieldUpdated     = "updated_at"
	fieldStatus      = "status"
	fieldNameServers = "name_servers"
	fieldCountry     = "registrant_country"
	fieldOrg         = "registrant_organization"
	fieldCategory    = "category"
)

func domainRules() []Rule {
	return []Rule{
		{Field: fieldDomain, Exact: []string{"domain", "domain_name", "domainname"}, Keywords: []string{"domain"}, Priority: 10},
		{Field: fieldRegistrar, Exact: []string{"registrar", "registrar_name", "registrarname"}, Keywords: []string{"registrar"}, Priority: 20},
		{Field: fieldCreated, Exact: []string{"created_at", "creation_date", "created_date", "createddate"}, Keywords: []string{"creat"}, Priority: 30},
		{Field: fieldExpires, Exact: []string{"expires_at", "expiration_date", "expires_date", "expiresdate"}, Keywords: []string{"expir"}, Priority: 31},
		{Field: fieldUpdated, Exact: []string{"updated_at", "updated_date", "updateddate"}, Keywords: []string{"updated"}, Priority: 32},
		{Field: fieldStatus, Exact: []string{"status"}, Keywords: []string{"status"}, Priority: 40},
		{Field: fieldNameServers, Exact: []string{"name_servers", "nameservers"}, Keywords: []string{"name server", "nameserver"}, Priority: 41},
		{Field: fieldCountry, Exact: []string{"registrant_country", "country"}, Keywords: []string{"country"}, Priority: 42},
		{Field: fieldOrg, Exact: []string{"registrant_organization", "organization", "org"}, Keywords: []string{"organi"}, Priority: 43},
		{Field: fieldCategory, Exact: []string{"category", "is_gaming_platform", "domain_category"}, Keywords: []string{"category"}, Priority: 50},
	}
}

// rulesFor returns the rule table for kind.
func rulesFor(kind models.Kind) []Rule {
	switch kind {
	case models.KindAnxiety, models.KindAggression, models.KindPredictionScales:
		return participantRules(kind)
	case models.KindSteamGames, models.KindGameMetadata:
		return gameRules()
	case models.KindWellbeing:
		return wellbeingRules()
	case models.KindDomains:
		return domainRules()
	}
	return nil
}

// normalizeLabel lowercases a label and folds every run of non-alphanumeric
// runes into a single underscore.
func normalizeLabel(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func labelTokens(label string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Split(normalizeLabel(label), "_") {
		if tok != "" {
			tokens[tok] = true
		}
	}
	return tokens
}

func (r Rule) matches(label string) bool {
	lower := strings.ToLower(label)
	var tokens map[string]bool
	if r.Match == MatchToken {
		tokens = labelTokens(label)
	}
	for _, kw := range r.Keywords {
		all := true
		for _, term := range strings.Fields(kw) {
			var ok bool
			if r.Match == MatchToken {
				ok = tokens[term]
			} else {
				ok = strings.Contains(lower, term)
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// claimColumns assigns source columns to fields. Candidates are visited in
// sorted (lowercased) order so the result does not depend on source column
// order. Exact canonical names claim first, then keywords by ascending rule
// priority. A column is claimed by at most one field.
func claimColumns(columns []string, rules []Rule) map[string][]string {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	candidates := make([]string, len(columns))
	copy(candidates, columns)
	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i]) < strings.ToLower(candidates[j])
	})

	claimed := make(map[string]bool, len(candidates))
	out := make(map[string][]string)
	capacity := make(map[string]int)
	for _, r := range ordered {
		if c := r.capacity(); c > capacity[r.Field] {
			capacity[r.Field] = c
		}
	}
	claim := func(field, col string) bool {
		if claimed[col] || len(out[field]) >= capacity[field] {
			return false
		}
		claimed[col] = true
		out[field] = append(out[field], col)
		return true
	}

	for _, r := range ordered {
		for _, exact := range r.Exact {
			for _, col := range candidates {
				if normalizeLabel(col) == exact && claim(r.Field, col) {
					break
				}
			}
		}
	}
	for _, r := range ordered {
		if len(r.Keywords) == 0 {
			continue
		}
		for _, col := range candidates {
			if claimed[col] || !r.matches(col) {
				continue
			}
			claim(r.Field, col)
		}
	}
	return out
}
