// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"respawn.yaml",
	"respawn.yml",
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultSeed is the fixed seed shared by the synthetic fallback and the
// enrichment alignment sampler.
const DefaultSeed int64 = 42

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			SourceDir:  "respawn_data",
			StagingDir: "respawn_data_staged",
			CleanedDir: "respawn_data_cleaned",
			MergedDir:  "respawn_data_merged",
		},
		Ingest: IngestConfig{
			SyntheticSeed: DefaultSeed,
		},
		Merge: MergeConfig{
			AlignmentSeed: DefaultSeed,
		},
		Database: DatabaseConfig{
			Path:      "respawn_database/respawn_gaming_psychology.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			Recreate:  true,
		},
		Manifest: ManifestConfig{
			Enabled: true,
			Path:    "respawn_state/manifest",
		},
		Metrics: MetricsConfig{
			TextfilePath: "",
		},
		Fetch: FetchConfig{
			MinDelay:     time.Second, // remote services ask for at most one call per second
			Timeout:      10 * time.Second,
			RAWGBaseURL:  "https://api.rawg.io/api",
			SteamBaseURL: "https://store.steampowered.com",
			SteamAppIDs: []string{
				"1938090", "271590", "730", "782330", "976310", "1091500", "1174180",
				"1172470", "413150", "638230", "1055540", "1135690", "383870", "570",
				"252950", "359550", "440", "739630", "381210", "292030", "489830",
				"1086940", "1245620", "620", "289070", "945360", "1097150", "1426210",
				"255710", "294100", "105600", "1145360", "504230", "367520", "620980",
			},
			RAWGQueries: []string{
				"League of Legends", "Fortnite", "Minecraft", "Call of Duty", "FIFA",
				"Grand Theft Auto V", "Apex Legends", "Valorant", "Counter-Strike 2",
				"World of Warcraft", "Overwatch 2", "Rocket League",
			},
			WhoisBaseURL: "https://www.whoisxmlapi.com/whoisserver/WhoisService",
			WhoisDomains: nil, // nil = curated gaming domain list
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any mapped setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RESPAWN_SOURCE_DIR -> paths.source_dir, DUCKDB_PATH -> database.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"fetch.rawg_queries",
	"fetch.steam_app_ids",
	"fetch.whois_domains",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, YAML lists arrive as slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf config paths.
var envMappings = map[string]string{
	// Stage directories
	"respawn_source_dir":  "paths.source_dir",
	"respawn_staging_dir": "paths.staging_dir",
	"respawn_cleaned_dir": "paths.cleaned_dir",
	"respawn_merged_dir":  "paths.merged_dir",

	// Ingest / merge
	"respawn_synthetic_seed": "ingest.synthetic_seed",
	"respawn_alignment_seed": "merge.alignment_seed",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"duckdb_recreate":   "database.recreate",

	// Manifest
	"manifest_enabled": "manifest.enabled",
	"manifest_path":    "manifest.path",

	// Metrics
	"metrics_textfile_path": "metrics.textfile_path",

	// Collaborator fetchers
	"fetch_min_delay": "fetch.min_delay",
	"fetch_timeout":   "fetch.timeout",
	"rawg_base_url":   "fetch.rawg_base_url",
	"rawg_api_key":    "fetch.rawg_api_key",
	"rawg_queries":    "fetch.rawg_queries",
	"steam_base_url":  "fetch.steam_base_url",
	"steam_app_ids":   "fetch.steam_app_ids",
	"whois_base_url":  "fetch.whois_base_url",
	"whois_api_key":   "fetch.whois_api_key",
	"whois_domains":   "fetch.whois_domains",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - RESPAWN_SOURCE_DIR -> paths.source_dir
//   - DUCKDB_PATH -> database.path
//   - RAWG_API_KEY -> fetch.rawg_api_key
//
// Unmapped variables return an empty key and are skipped, so unrelated
// environment variables never pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
