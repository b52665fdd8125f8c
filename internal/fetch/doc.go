// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package fetch collects raw game and domain metadata from remote APIs.

Three collaborators are provided:

  - RAWGClient searches the RAWG games database by title
  - SteamClient reads Steam store app details by app id
  - WhoisClient looks up domain registrations through WHOIS XML API

Each client spaces its calls with a golang.org/x/time/rate limiter (one call
per fetch.min_delay) and runs them through its own sony/gobreaker circuit
breaker. Responses are decoded with goccy/go-json; error bodies are read up to
64KB. HTTP 429 responses are retried with exponential backoff or the server's
Retry-After value.

Fetcher drives all three and writes rawg_games.csv, steam_games.csv and
whois_gaming_domains.csv into the source directory, the first candidates the
ingest loader probes. The core pipeline stages never call this package; it
runs only from "respawn fetch".

Usage:

	f := fetch.New(fetch.Config{SourceDir: cfg.Paths.SourceDir, Fetch: cfg.Fetch})
	stats, err := f.Run(ctx)
*/
package fetch
