// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/dataset"
)

// SteamFileName is the raw Steam catalogue file the ingest loader probes first.
const SteamFileName = "steam_games.csv"

type described struct {
	ID          any    `json:"id"`
	Description string `json:"description"`
}

// SteamApp is the data block of a Steam store appdetails response.
type SteamApp struct {
	SteamAppID    int64       `json:"steam_appid"`
	Type          string      `json:"type"`
	Name          string      `json:"name"`
	IsFree        bool        `json:"is_free"`
	Developers    []string    `json:"developers"`
	Publishers    []string    `json:"publishers"`
	Genres        []described `json:"genres"`
	Categories    []described `json:"categories"`
	PriceOverview *struct {
		Currency string `json:"currency"`
		Final    int64  `json:"final"` // cents
	} `json:"price_overview"`
	Metacritic *struct {
		Score int `json:"score"`
	} `json:"metacritic"`
	Recommendations *struct {
		Total int `json:"total"`
	} `json:"recommendations"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	ShortDescription string `json:"short_description"`
}

// PriceUSD returns the final price in dollars, 0 for free or unpriced apps.
func (a SteamApp) PriceUSD() float64 {
	if a.PriceOverview == nil {
		return 0
	}
	return float64(a.PriceOverview.Final) / 100
}

// IsMultiplayer reports whether any store category is a multi-player mode.
func (a SteamApp) IsMultiplayer() bool {
	return a.hasCategory("multi-player", "pvp", "co-op", "mmo")
}

// HasMicrotransactions reports whether the store lists in-app purchases.
func (a SteamApp) HasMicrotransactions() bool {
	return a.hasCategory("in-app purchases")
}

func (a SteamApp) hasCategory(substrs ...string) bool {
	for _, c := range a.Categories {
		d := strings.ToLower(c.Description)
		for _, s := range substrs {
			if strings.Contains(d, s) {
				return true
			}
		}
	}
	return false
}

func descriptions(ds []described) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Description
	}
	return out
}

type steamAppDetails struct {
	Success bool     `json:"success"`
	Data    SteamApp `json:"data"`
}

// SteamClient reads app details from the Steam store API.
type SteamClient struct {
	*client
	baseURL string
}

// NewSteamClient creates a Steam client from the fetch settings.
func NewSteamClient(cfg *config.FetchConfig) *SteamClient {
	return &SteamClient{
		client:  newClient("steam", cfg),
		baseURL: strings.TrimRight(cfg.SteamBaseURL, "/"),
	}
}

// AppDetails returns the store data for appID. Apps the store reports as
// unsuccessful return ErrNotFound.
func (c *SteamClient) AppDetails(ctx context.Context, appID string) (*SteamApp, error) {
	params := url.Values{}
	params.Set("appids", appID)

	var resp map[string]steamAppDetails
	if err := c.getJSON(ctx, c.baseURL+"/api/appdetails?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("app %s: %w", appID, err)
	}
	details, ok := resp[appID]
	if !ok || !details.Success {
		return nil, fmt.Errorf("app %s: steam: %w", appID, ErrNotFound)
	}
	app := details.Data
	return &app, nil
}

var steamColumns = []string{
	"app_id", "name", "type", "release_date", "price_usd", "metacritic_score",
	"recommendations", "genres", "categories", "developers", "publishers",
	"is_multiplayer", "has_microtransactions",
}

// SteamTable lays apps out in the raw Steam file layout.
func SteamTable(apps []SteamApp) *dataset.Table {
	tbl := dataset.New(steamColumns)
	for _, a := range apps {
		metacritic := dataset.Null()
		if a.Metacritic != nil {
			metacritic = dataset.Int(int64(a.Metacritic.Score))
		}
		recommendations := dataset.Null()
		if a.Recommendations != nil {
			recommendations = dataset.Int(int64(a.Recommendations.Total))
		}
		tbl.AppendRecord(map[string]dataset.Value{
			"app_id":                dataset.Int(a.SteamAppID),
			"name":                  textOrNull(a.Name),
			"type":                  textOrNull(a.Type),
			"release_date":          textOrNull(a.ReleaseDate.Date),
			"price_usd":             dataset.Float(a.PriceUSD()),
			"metacritic_score":      metacritic,
			"recommendations":       recommendations,
			"genres":                joinOrNull(descriptions(a.Genres)),
			"categories":            joinOrNull(descriptions(a.Categories)),
			"developers":            joinOrNull(a.Developers),
			"publishers":            joinOrNull(a.Publishers),
			"is_multiplayer":        dataset.Bool(a.IsMultiplayer()),
			"has_microtransactions": dataset.Bool(a.HasMicrotransactions()),
		})
	}
	return tbl
}

// WriteSteamCSV writes apps to path.
func WriteSteamCSV(path string, apps []SteamApp) error {
	return dataset.WriteCSVFile(path, SteamTable(apps))
}
