// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Package logging provides centralized zerolog-based structured logging for Respawn.
//
// Every pipeline stage logs through this package so that per-kind summaries,
// synthetic fallbacks and row-level skip counts share one structured format.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("kind", "anxiety").Int("rows", 1000).Msg("Source staged")
//	logging.Err(err).Str("kind", "wellbeing").Msg("Source unparseable")
//
// # Context
//
// The pipeline runner stores the run ID and the current stage on the context.
// Ctx(ctx) returns a logger that carries both:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	ctx = logging.ContextWithStage(ctx, "merge")
//	logging.Ctx(ctx).Info().Msg("Master table written")
//
// # Configuration
//
// Level, format and caller reporting come from the logging section of the
// pipeline configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
