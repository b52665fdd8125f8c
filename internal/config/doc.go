// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package config provides layered configuration loading for the Respawn pipeline.

Configuration is resolved with Koanf v2 in three layers (highest priority wins):

  - Environment variables (explicit mapping table, see envMappings)
  - Optional YAML file (CONFIG_PATH, respawn.yaml, config.yaml)
  - Built-in defaults

# Configuration Structure

  - PathsConfig: source, staging, cleaned and merged stage directories
  - IngestConfig: synthetic fallback seed
  - MergeConfig: enrichment alignment seed
  - DatabaseConfig: DuckDB file, memory limit, recreate-before-load
  - ManifestConfig: BadgerDB run manifest location
  - MetricsConfig: Prometheus textfile output
  - FetchConfig: RAWG, Steam and WHOIS collaborator clients
  - LoggingConfig: zerolog level and format

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Error().Err(err).Msg("Invalid configuration")
	}
	loader := ingest.NewLoader(ingest.Config{
	    SourceDir: cfg.Paths.SourceDir,
	    OutputDir: cfg.Paths.StagingDir,
	    Seed:      cfg.Ingest.SyntheticSeed,
	})
*/
package config
