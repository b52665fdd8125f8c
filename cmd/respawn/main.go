// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

// Command respawn runs the gaming wellbeing data pipeline.
//
// Each stage reads the previous stage's CSV artifacts from disk, so stages
// can be run one at a time or all together:
//
//	respawn fetch      # pull RAWG, Steam and WHOIS metadata into the source dir
//	respawn ingest     # stage raw or synthetic tables
//	respawn reconcile  # map staged tables onto canonical columns
//	respawn merge      # build the master, comprehensive and analysis tables
//	respawn load       # recreate the DuckDB database from merged artifacts
//	respawn run        # ingest, reconcile, merge and load
//	respawn status     # print the latest run manifest
//
// Configuration is loaded with Koanf v2 from built-in defaults, an optional
// config.yaml (or CONFIG_PATH), and environment variables such as
// DUCKDB_PATH, LOG_LEVEL and RAWG_API_KEY.
//
// SIGINT and SIGTERM cancel the running stage; the stage's partial work is
// recorded in the manifest as failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/manifest"
	"github.com/tomtom215/respawn/internal/metrics"
	"github.com/tomtom215/respawn/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: respawn [flags] <command>

commands:
  fetch       fetch RAWG, Steam and WHOIS metadata into the source directory
  ingest      stage every source table
  reconcile   clean the staged tables
  merge       merge the cleaned tables
  load        load the merged artifacts into DuckDB
  run         ingest, reconcile, merge and load
  status      print the latest run manifest

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command is a parsed invocation.
type command struct {
	name         string
	stages       []pipeline.Stage
	metricsPath  string
	manifestPath string
}

// parseArgs parses flags and the command name. It returns flag.ErrHelp when
// usage was requested.
func parseArgs(args []string, stderr io.Writer) (*command, error) {
	fs := flag.NewFlagSet("respawn", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	cmd := &command{}
	fs.StringVar(&cmd.metricsPath, "metrics-textfile", "", "write Prometheus metrics to this file when the command ends (overrides metrics.textfile_path)")
	fs.StringVar(&cmd.manifestPath, "manifest", "", "run manifest directory (overrides manifest.path)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one command")
	}

	cmd.name = fs.Arg(0)
	switch cmd.name {
	case "run":
		cmd.stages = pipeline.CoreStages()
	case "status":
	default:
		stage, err := pipeline.ParseStage(cmd.name)
		if err != nil {
			fs.Usage()
			return nil, err
		}
		cmd.stages = []pipeline.Stage{stage}
	}
	return cmd, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "respawn:", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "respawn: failed to load configuration:", err)
		return 1
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Version:   version,
	})
	if cmd.manifestPath != "" {
		cfg.Manifest.Path = cmd.manifestPath
	}
	if cmd.metricsPath == "" {
		cmd.metricsPath = cfg.Metrics.TextfilePath
	}

	store, err := pipeline.OpenStore(cfg.Manifest)
	if err != nil {
		logging.Error().Err(err).Str("path", cfg.Manifest.Path).Msg("Failed to open run manifest")
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing run manifest")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.name == "status" {
		return printStatus(ctx, store, stdout, stderr)
	}

	logging.Info().
		Str("command", cmd.name).
		Str("source_dir", cfg.Paths.SourceDir).
		Str("db_path", cfg.Database.Path).
		Bool("manifest", cfg.Manifest.Enabled).
		Msg("Starting respawn")

	report, runErr := pipeline.New(cfg, store, version).Run(ctx, cmd.stages...)

	if cmd.metricsPath != "" {
		if err := metrics.WriteTextfile(cmd.metricsPath); err != nil {
			logging.Warn().Err(err).Str("path", cmd.metricsPath).Msg("Failed to write metrics textfile")
		}
	}

	if runErr != nil {
		logging.Error().Err(runErr).Str("run_id", report.RunID).Msg("Pipeline failed")
		return 1
	}
	logging.Info().Str("run_id", report.RunID).Int("stages", len(report.Stages)).Msg("Pipeline finished")
	return 0
}

// printStatus writes the latest run manifest to stdout as indented JSON.
func printStatus(ctx context.Context, store manifest.Store, stdout, stderr io.Writer) int {
	latest, err := store.Latest(ctx)
	if errors.Is(err, manifest.ErrRunNotFound) {
		fmt.Fprintln(stderr, "respawn: no runs recorded")
		return 1
	}
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read run manifest")
		return 1
	}
	out, err := json.MarshalIndent(latest, "", "  ")
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode run manifest")
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	for _, s := range latest.Stages {
		if s.Failed() {
			return 1
		}
	}
	return 0
}
