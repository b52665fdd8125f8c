// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package models defines the canonical record types shared by every pipeline stage.

Dataset kinds:

  - Kind: one source dataset (anxiety, aggression, wellbeing, prediction_scales,
    steam_games, game_metadata, domains). AllKinds returns them in pipeline order.
  - Provenance: whether a table was loaded from a file or synthesized.

Canonical observations (the Observation interface):

  - ParticipantSurvey: one survey respondent with exactly one score bundle
  - GameMetadata: one game from Steam or RAWG
  - WellbeingSession: one play session with 1-10 sub-metrics
  - DomainRegistration: one WHOIS record with a closed-set category

Every scored value carries its ScaleRange so the reconciler can clamp it and the
validator can reject anything still outside the domain.
*/
package models
