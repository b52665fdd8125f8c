// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package models

import (
	"fmt"
	"strings"
)

// Kind identifies one source dataset kind.
type Kind string

const (
	KindAnxiety          Kind = "anxiety"
	KindAggression       Kind = "aggression"
	KindWellbeing        Kind = "wellbeing"
	KindPredictionScales Kind = "prediction_scales"
	KindSteamGames       Kind = "steam_games"
	KindGameMetadata     Kind = "game_metadata"
	KindDomains          Kind = "domains"
)

// Entity is the grain of a dataset kind.
type Entity string

const (
	EntityParticipant Entity = "participant"
	EntityGame        Entity = "game"
	EntitySession     Entity = "session"
	EntityDomain      Entity = "domain"
)

// AllKinds returns every dataset kind in pipeline order. The order is part of
// the merge contract: master deduplication keeps the first occurrence.
func AllKinds() []Kind {
	return []Kind{
		KindAnxiety,
		KindAggression,
		KindWellbeing,
		KindPredictionScales,
		KindSteamGames,
		KindGameMetadata,
		KindDomains,
	}
}

// ParticipantKinds returns the participant-survey kinds in pipeline order.
func ParticipantKinds() []Kind {
	return []Kind{KindAnxiety, KindAggression, KindPredictionScales}
}

// ParseKind converts a string into a Kind. Accepts "7scales" as an alias.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "7scales" {
		return KindPredictionScales, nil
	}
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// Entity returns the grain of the kind.
func (k Kind) Entity() Entity {
	switch k {
	case KindAnxiety, KindAggression, KindPredictionScales:
		return EntityParticipant
	case KindSteamGames, KindGameMetadata:
		return EntityGame
	case KindWellbeing:
		return EntitySession
	default:
		return EntityDomain
	}
}

// IDPrefix is the prefix used for generated participant or session IDs.
func (k Kind) IDPrefix() string {
	switch k {
	case KindAnxiety:
		return "A"
	case KindAggression:
		return "G"
	case KindPredictionScales:
		return "S"
	case KindWellbeing:
		return "W"
	default:
		return ""
	}
}

// Provenance records whether a table came from a real source file or was
// generated because the source was missing.
type Provenance string

const (
	ProvenanceLoaded    Provenance = "loaded"
	ProvenanceSynthetic Provenance = "synthetic"
)

// Gender is the reconciled respondent gender.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// Valid reports whether g is one of the enumerated genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}
