// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/models"
)

const stageName = "fetch"

// Config configures a Fetcher.
type Config struct {
	SourceDir string
	Fetch     config.FetchConfig
}

// ClientStats counts the outcome of one collaborator.
type ClientStats struct {
	Requested int    `json:"requested"`
	Written   int    `json:"written"`
	NotFound  int    `json:"not_found"`
	Failed    int    `json:"failed"`
	Output    string `json:"output,omitempty"`
	Skipped   string `json:"skipped,omitempty"` // reason the client did not run
}

// Stats summarizes a fetch run, keyed by client name.
type Stats map[string]ClientStats

// Fetcher runs every configured collaborator and writes its raw file into
// the source directory.
type Fetcher struct {
	cfg   Config
	rawg  *RAWGClient
	steam *SteamClient
	whois *WhoisClient
	now   func() time.Time
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	return &Fetcher{
		cfg:   cfg,
		rawg:  NewRAWGClient(&cfg.Fetch),
		steam: NewSteamClient(&cfg.Fetch),
		whois: NewWhoisClient(&cfg.Fetch),
		now:   time.Now,
	}
}

// Run fetches from RAWG, Steam and WHOIS in turn. Individual misses are
// logged and counted. A client stops early once its circuit opens, and
// nothing is written for a client that produced no records.
func (f *Fetcher) Run(ctx context.Context) (Stats, error) {
	ctx = logging.ContextWithStage(ctx, stageName)
	ctx = logging.ContextWithLogger(ctx, logging.WithComponent("fetch"))
	stats := make(Stats, 3)
	var errs []error

	rs, err := f.runRAWG(ctx)
	stats[f.rawg.name] = rs
	errs = append(errs, err)

	ss, err := f.runSteam(ctx)
	stats[f.steam.name] = ss
	errs = append(errs, err)

	ws, err := f.runWhois(ctx)
	stats[f.whois.name] = ws
	errs = append(errs, err)

	for name, s := range stats {
		logging.Ctx(ctx).Info().
			Str("client", name).
			Int("requested", s.Requested).
			Int("written", s.Written).
			Int("not_found", s.NotFound).
			Int("failed", s.Failed).
			Str("skipped", s.Skipped).
			Msg("Fetch summary")
	}
	return stats, errors.Join(errs...)
}

// record classifies err for one item. It returns a non-nil error when the
// client should stop.
func record(ctx context.Context, s *ClientStats, client, item string, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ErrNotFound):
		s.NotFound++
		logging.Ctx(ctx).Warn().Str("client", client).Str("item", item).Msg("No record found")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState):
		s.Failed++
		return fmt.Errorf("%s: stopping: %w", client, err)
	default:
		s.Failed++
		logging.Ctx(ctx).Warn().Err(err).Str("client", client).Str("item", item).Msg("Fetch failed")
		return nil
	}
}

func (f *Fetcher) runRAWG(ctx context.Context) (ClientStats, error) {
	var s ClientStats
	if f.rawg.apiKey == "" {
		s.Skipped = "no api key"
		return s, nil
	}
	var games []RAWGGame
	var stop error
	for _, q := range f.cfg.Fetch.RAWGQueries {
		s.Requested++
		found, err := f.rawg.SearchGames(ctx, q)
		if stop = record(ctx, &s, f.rawg.name, q, err); stop != nil {
			break
		}
		games = append(games, found...)
	}
	if len(games) > 0 {
		s.Output = filepath.Join(f.cfg.SourceDir, RAWGFileName)
		if err := WriteRAWGCSV(s.Output, games); err != nil {
			return s, errors.Join(stop, fmt.Errorf("write %s: %w", RAWGFileName, err))
		}
		s.Written = len(games)
	}
	return s, stop
}

func (f *Fetcher) runSteam(ctx context.Context) (ClientStats, error) {
	var s ClientStats
	var apps []SteamApp
	var stop error
	for _, id := range f.cfg.Fetch.SteamAppIDs {
		s.Requested++
		app, err := f.steam.AppDetails(ctx, id)
		if stop = record(ctx, &s, f.steam.name, id, err); stop != nil {
			break
		}
		if app != nil {
			apps = append(apps, *app)
		}
	}
	if len(apps) > 0 {
		s.Output = filepath.Join(f.cfg.SourceDir, SteamFileName)
		if err := WriteSteamCSV(s.Output, apps); err != nil {
			return s, errors.Join(stop, fmt.Errorf("write %s: %w", SteamFileName, err))
		}
		s.Written = len(apps)
	}
	return s, stop
}

func (f *Fetcher) runWhois(ctx context.Context) (ClientStats, error) {
	var s ClientStats
	if f.whois.apiKey == "" {
		s.Skipped = "no api key"
		return s, nil
	}
	domains := f.cfg.Fetch.WhoisDomains
	if len(domains) == 0 {
		domains = models.CuratedDomains()
	}
	var records []WhoisRecord
	var stop error
	for _, d := range domains {
		s.Requested++
		rec, err := f.whois.Lookup(ctx, d)
		if stop = record(ctx, &s, f.whois.name, d, err); stop != nil {
			break
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	if len(records) > 0 {
		s.Output = filepath.Join(f.cfg.SourceDir, WhoisFileName)
		if err := WriteWhoisCSV(s.Output, records, f.now()); err != nil {
			return s, errors.Join(stop, fmt.Errorf("write %s: %w", WhoisFileName, err))
		}
		s.Written = len(records)
	}
	return s, stop
}
