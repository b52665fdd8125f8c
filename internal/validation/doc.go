// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package validation provides struct validation using go-playground/validator v10.
//
// The reconciler validates every canonical observation after clamping. The
// validator is a thread-safe singleton with two custom tags:
//
//   - gender: one of male, female, other, unknown
//   - domaincategory: one of the closed domain category set
//
// Example:
//
//	type ParticipantSurvey struct {
//	    Age              int     `validate:"gte=10,lte=99"`
//	    GamingHoursDaily float64 `validate:"gte=0,lte=24"`
//	    Gender           Gender  `validate:"gender"`
//	}
//
//	if verr := validation.ValidateStruct(&obs); verr != nil {
//	    // verr.Fields() lists the failing fields
//	}
package validation
