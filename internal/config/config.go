// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package config

import (
	"time"
)

// Config holds all pipeline configuration.
// Each stage receives only the section it needs; nothing in the pipeline
// reads directory paths from process-wide state.
type Config struct {
	Paths    PathsConfig    `koanf:"paths"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Merge    MergeConfig    `koanf:"merge"`
	Database DatabaseConfig `koanf:"database"`
	Manifest ManifestConfig `koanf:"manifest"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// PathsConfig holds the stage directories. Each stage reads the previous
// stage's directory and writes its own.
//
// Environment Variables:
//   - RESPAWN_SOURCE_DIR: raw input files and fetcher output (default: respawn_data)
//   - RESPAWN_STAGING_DIR: ingested UTF-8 copies (default: respawn_data_staged)
//   - RESPAWN_CLEANED_DIR: reconciled per-kind tables (default: respawn_data_cleaned)
//   - RESPAWN_MERGED_DIR: master, comprehensive and view tables (default: respawn_data_merged)
type PathsConfig struct {
	SourceDir  string `koanf:"source_dir"`
	StagingDir string `koanf:"staging_dir"`
	CleanedDir string `koanf:"cleaned_dir"`
	MergedDir  string `koanf:"merged_dir"`
}

// IngestConfig controls the synthetic fallback of the ingestion stage.
type IngestConfig struct {
	SyntheticSeed int64 `koanf:"synthetic_seed"`
}

// MergeConfig controls the entity merger.
type MergeConfig struct {
	// AlignmentSeed seeds the sampling used when enrichment columns are
	// aligned onto a participant base of a different length.
	AlignmentSeed int64 `koanf:"alignment_seed"`
}

// DatabaseConfig holds DuckDB settings for the relational loader.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`  // 0 = use NumCPU
	Recreate  bool   `koanf:"recreate"` // delete the database file before each load
}

// ManifestConfig holds the BadgerDB run manifest settings.
type ManifestConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// MetricsConfig controls Prometheus textfile output at the end of a run.
type MetricsConfig struct {
	TextfilePath string `koanf:"textfile_path"`
}

// FetchConfig holds settings for the external metadata collaborators.
// These clients are never used by the core stages.
type FetchConfig struct {
	// MinDelay is the minimum spacing between consecutive calls to one API.
	MinDelay time.Duration `koanf:"min_delay"`
	Timeout  time.Duration `koanf:"timeout"`

	RAWGBaseURL string   `koanf:"rawg_base_url"`
	RAWGAPIKey  string   `koanf:"rawg_api_key"`
	RAWGQueries []string `koanf:"rawg_queries"`

	SteamBaseURL string   `koanf:"steam_base_url"`
	SteamAppIDs  []string `koanf:"steam_app_ids"`

	WhoisBaseURL string   `koanf:"whois_base_url"`
	WhoisAPIKey  string   `koanf:"whois_api_key"`
	WhoisDomains []string `koanf:"whois_domains"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
