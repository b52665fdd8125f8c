// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package config

import (
	"fmt"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}

	if err := c.validateSeeds(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateFetch(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validatePaths requires every stage directory and rejects a stage writing
// into the directory it reads from.
func (c *Config) validatePaths() error {
	dirs := []struct {
		name  string
		value string
	}{
		{"RESPAWN_SOURCE_DIR", c.Paths.SourceDir},
		{"RESPAWN_STAGING_DIR", c.Paths.StagingDir},
		{"RESPAWN_CLEANED_DIR", c.Paths.CleanedDir},
		{"RESPAWN_MERGED_DIR", c.Paths.MergedDir},
	}
	seen := make(map[string]string, len(dirs))
	for _, d := range dirs {
		if d.value == "" {
			return fmt.Errorf("%s is required", d.name)
		}
		if prev, ok := seen[d.value]; ok {
			return fmt.Errorf("%s must differ from %s (both %q)", d.name, prev, d.value)
		}
		seen[d.value] = d.name
	}
	return nil
}

func (c *Config) validateSeeds() error {
	if c.Ingest.SyntheticSeed <= 0 {
		return fmt.Errorf("RESPAWN_SYNTHETIC_SEED must be positive, got %d", c.Ingest.SyntheticSeed)
	}
	if c.Merge.AlignmentSeed <= 0 {
		return fmt.Errorf("RESPAWN_ALIGNMENT_SEED must be positive, got %d", c.Merge.AlignmentSeed)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if c.Manifest.Enabled && c.Manifest.Path == "" {
		return fmt.Errorf("MANIFEST_PATH is required when MANIFEST_ENABLED=true")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.MinDelay <= 0 {
		return fmt.Errorf("FETCH_MIN_DELAY must be positive, got %v", c.Fetch.MinDelay)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.Fetch.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
