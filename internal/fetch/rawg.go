// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/dataset"
)

// RAWGFileName is the raw game metadata file the ingest loader probes first.
const RAWGFileName = "rawg_games.csv"

// rawgPageSize keeps only the best match per search.
const rawgPageSize = 1

// maxRAWGTags caps the tags written per game.
const maxRAWGTags = 10

type named struct {
	Name string `json:"name"`
}

// RAWGGame is one search result from the RAWG games endpoint.
type RAWGGame struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Released     string  `json:"released"`
	Rating       float64 `json:"rating"`
	RatingTop    int     `json:"rating_top"`
	RatingsCount int     `json:"ratings_count"`
	Metacritic   *int    `json:"metacritic"`
	Playtime     int     `json:"playtime"`
	Genres       []named `json:"genres"`
	Tags         []named `json:"tags"`
	ESRBRating   *named  `json:"esrb_rating"`
	Platforms    []struct {
		Platform named `json:"platform"`
	} `json:"platforms"`

	// Query is the search term that produced this result. Not part of the
	// API response.
	Query string `json:"-"`
}

// GenreNames returns the game's genre names in API order.
func (g RAWGGame) GenreNames() []string {
	return names(g.Genres)
}

// PlatformNames returns the game's platform names in API order.
func (g RAWGGame) PlatformNames() []string {
	out := make([]string, len(g.Platforms))
	for i, p := range g.Platforms {
		out[i] = p.Platform.Name
	}
	return out
}

func names(ns []named) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Name
	}
	return out
}

type rawgSearchResponse struct {
	Count   int        `json:"count"`
	Results []RAWGGame `json:"results"`
}

// RAWGClient searches the RAWG video game database.
type RAWGClient struct {
	*client
	baseURL string
	apiKey  string
}

// NewRAWGClient creates a RAWG client from the fetch settings.
func NewRAWGClient(cfg *config.FetchConfig) *RAWGClient {
	return &RAWGClient{
		client:  newClient("rawg", cfg),
		baseURL: strings.TrimRight(cfg.RAWGBaseURL, "/"),
		apiKey:  cfg.RAWGAPIKey,
	}
}

// SearchGames returns the best matches for query. An empty result is
// reported as ErrNotFound.
func (c *RAWGClient) SearchGames(ctx context.Context, query string) ([]RAWGGame, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(rawgPageSize))

	var resp rawgSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/games?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("search %q: rawg: %w", query, ErrNotFound)
	}
	for i := range resp.Results {
		resp.Results[i].Query = query
	}
	return resp.Results, nil
}

var rawgColumns = []string{
	"rawg_id", "name", "released", "rating", "rating_top", "ratings_count",
	"metacritic", "playtime", "platforms", "genres", "tags", "esrb_rating", "search_query",
}

// RAWGTable lays games out in the raw RAWG file layout.
func RAWGTable(games []RAWGGame) *dataset.Table {
	tbl := dataset.New(rawgColumns)
	for _, g := range games {
		tags := names(g.Tags)
		if len(tags) > maxRAWGTags {
			tags = tags[:maxRAWGTags]
		}
		esrb := dataset.Null()
		if g.ESRBRating != nil {
			esrb = textOrNull(g.ESRBRating.Name)
		}
		metacritic := dataset.Null()
		if g.Metacritic != nil {
			metacritic = dataset.Int(int64(*g.Metacritic))
		}
		tbl.AppendRecord(map[string]dataset.Value{
			"rawg_id":       dataset.Int(g.ID),
			"name":          textOrNull(g.Name),
			"released":      textOrNull(g.Released),
			"rating":        dataset.Float(g.Rating),
			"rating_top":    dataset.Int(int64(g.RatingTop)),
			"ratings_count": dataset.Int(int64(g.RatingsCount)),
			"metacritic":    metacritic,
			"playtime":      dataset.Int(int64(g.Playtime)),
			"platforms":     joinOrNull(g.PlatformNames()),
			"genres":        joinOrNull(g.GenreNames()),
			"tags":          joinOrNull(tags),
			"esrb_rating":   esrb,
			"search_query":  textOrNull(g.Query),
		})
	}
	return tbl
}

// WriteRAWGCSV writes games to path.
func WriteRAWGCSV(path string, games []RAWGGame) error {
	return dataset.WriteCSVFile(path, RAWGTable(games))
}

func textOrNull(s string) dataset.Value {
	if strings.TrimSpace(s) == "" {
		return dataset.Null()
	}
	return dataset.String(s)
}

func joinOrNull(parts []string) dataset.Value {
	return textOrNull(strings.Join(parts, ", "))
}
