// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/logging"
)

const rawgBody = `{
  "count": 1,
  "results": [{
    "id": 3328,
    "name": "The Witcher 3: Wild Hunt",
    "released": "2015-05-18",
    "rating": 4.66,
    "rating_top": 5,
    "ratings_count": 6511,
    "metacritic": 92,
    "playtime": 46,
    "genres": [{"name": "Action"}, {"name": "RPG"}],
    "tags": [{"name": "Singleplayer"}],
    "esrb_rating": {"name": "Mature"},
    "platforms": [{"platform": {"name": "PC"}}, {"platform": {"name": "PlayStation 4"}}]
  }]
}`

const steamBody = `{
  "570": {
    "success": true,
    "data": {
      "steam_appid": 570,
      "type": "game",
      "name": "Dota 2",
      "is_free": true,
      "developers": ["Valve"],
      "publishers": ["Valve"],
      "genres": [{"id": "1", "description": "Action"}, {"id": "37", "description": "Free to Play"}],
      "categories": [{"id": 1, "description": "Multi-player"}, {"id": 35, "description": "In-App Purchases"}],
      "metacritic": {"score": 90},
      "recommendations": {"total": 1500000},
      "release_date": {"coming_soon": false, "date": "9 Jul, 2013"}
    }
  }
}`

const whoisBody = `{
  "WhoisRecord": {
    "domainName": "steam.com",
    "status": "clientTransferProhibited",
    "nameServers": {"hostNames": ["ns1.example.net", "ns2.example.net"]},
    "registrant": {"organization": "Valve Corporation", "country": "UNITED STATES"},
    "registryData": {
      "registrarName": "MarkMonitor Inc.",
      "createdDate": "1994-08-29T04:00:00Z",
      "expiresDate": "2026-08-28T04:00:00Z",
      "updatedDate": "2024-07-27T09:10:11Z"
    }
  }
}`

func testFetchConfig(base string) config.FetchConfig {
	return config.FetchConfig{
		MinDelay:     time.Millisecond,
		Timeout:      5 * time.Second,
		RAWGBaseURL:  base,
		RAWGAPIKey:   "rawg-key",
		SteamBaseURL: base,
		WhoisBaseURL: base + "/whois",
		WhoisAPIKey:  "whois-key",
	}
}

func TestRAWGClient_SearchGames(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			t.Errorf("path = %q, want /games", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		q := r.URL.Query()
		if q.Get("search") == "nothing" {
			fmt.Fprint(w, `{"count":0,"results":[]}`)
			return
		}
		fmt.Fprint(w, rawgBody)
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewRAWGClient(&cfg)

	games, err := c.SearchGames(context.Background(), "witcher 3")
	if err != nil {
		t.Fatalf("SearchGames() error = %v", err)
	}
	for _, want := range []string{"key=rawg-key", "search=witcher+3", "page_size=1"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(games) != 1 {
		t.Fatalf("len(games) = %d, want 1", len(games))
	}
	g := games[0]
	if g.ID != 3328 || g.Name != "The Witcher 3: Wild Hunt" || g.RatingsCount != 6511 {
		t.Errorf("game = %+v", g)
	}
	if g.Metacritic == nil || *g.Metacritic != 92 {
		t.Errorf("Metacritic = %v, want 92", g.Metacritic)
	}
	if got := strings.Join(g.GenreNames(), ","); got != "Action,RPG" {
		t.Errorf("GenreNames() = %q, want Action,RPG", got)
	}
	if got := strings.Join(g.PlatformNames(), ","); got != "PC,PlayStation 4" {
		t.Errorf("PlatformNames() = %q", got)
	}
	if g.Query != "witcher 3" {
		t.Errorf("Query = %q, want witcher 3", g.Query)
	}

	if _, err := c.SearchGames(context.Background(), "nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SearchGames(nothing) error = %v, want ErrNotFound", err)
	}
}

func TestSteamClient_AppDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/appdetails" {
			t.Errorf("path = %q, want /api/appdetails", r.URL.Path)
		}
		switch id := r.URL.Query().Get("appids"); id {
		case "570":
			fmt.Fprint(w, steamBody)
		default:
			fmt.Fprintf(w, `{%q: {"success": false}}`, id)
		}
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)

	app, err := c.AppDetails(context.Background(), "570")
	if err != nil {
		t.Fatalf("AppDetails() error = %v", err)
	}
	if app.Name != "Dota 2" || app.SteamAppID != 570 {
		t.Errorf("app = %+v", app)
	}
	if app.PriceUSD() != 0 {
		t.Errorf("PriceUSD() = %v, want 0", app.PriceUSD())
	}
	if !app.IsMultiplayer() {
		t.Error("IsMultiplayer() = false, want true")
	}
	if !app.HasMicrotransactions() {
		t.Error("HasMicrotransactions() = false, want true")
	}
	if app.Recommendations == nil || app.Recommendations.Total != 1500000 {
		t.Errorf("Recommendations = %v, want 1500000", app.Recommendations)
	}

	if _, err := c.AppDetails(context.Background(), "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppDetails(1) error = %v, want ErrNotFound", err)
	}
}

func TestSteamApp_PriceUSD(t *testing.T) {
	var app SteamApp
	app.PriceOverview = &struct {
		Currency string `json:"currency"`
		Final    int64  `json:"final"`
	}{Currency: "USD", Final: 1999}
	if got := app.PriceUSD(); got != 19.99 {
		t.Errorf("PriceUSD() = %v, want 19.99", got)
	}
}

func TestWhoisClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/whois" {
			t.Errorf("path = %q, want /whois", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("apiKey") != "whois-key" || q.Get("outputFormat") != "JSON" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		switch q.Get("domainName") {
		case "steam.com":
			fmt.Fprint(w, whoisBody)
		case "bad.example":
			fmt.Fprint(w, `{"ErrorMessage": {"errorCode": "WHOIS_01", "msg": "invalid domain"}}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewWhoisClient(&cfg)

	rec, err := c.Lookup(context.Background(), "steam.com")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if rec.RegistrarName != "MarkMonitor Inc." {
		t.Errorf("RegistrarName = %q, want registry fallback", rec.RegistrarName)
	}
	if rec.CreatedDate != "1994-08-29T04:00:00Z" {
		t.Errorf("CreatedDate = %q", rec.CreatedDate)
	}
	if got := strings.Join(rec.HostNames(), ","); got != "ns1.example.net,ns2.example.net" {
		t.Errorf("HostNames() = %q", got)
	}

	if _, err := c.Lookup(context.Background(), "bad.example"); !errors.Is(err, ErrWhoisAPI) {
		t.Errorf("Lookup(bad.example) error = %v, want ErrWhoisAPI", err)
	}
	if _, err := c.Lookup(context.Background(), "empty.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(empty.example) error = %v, want ErrNotFound", err)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("appids") {
		case "404":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, strings.Repeat("x", maxErrorBodySize+10))
		}
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)

	if _, err := c.AppDetails(context.Background(), "404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppDetails(404) error = %v, want ErrNotFound", err)
	}

	_, err := c.AppDetails(context.Background(), "502")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("AppDetails(502) error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", se.StatusCode)
	}
	if !strings.HasSuffix(se.Body, "(truncated)") {
		t.Error("error body should be truncated")
	}
	if len(se.Body) > maxErrorBodySize+32 {
		t.Errorf("len(Body) = %d, want bounded", len(se.Body))
	}
}

func TestClient_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, steamBody)
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)
	c.retryBaseDelay = time.Millisecond

	if _, err := c.AppDetails(context.Background(), "570"); err != nil {
		t.Fatalf("AppDetails() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)

	for i := 0; i < 10; i++ {
		if _, err := c.AppDetails(context.Background(), "570"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, err := c.AppDetails(context.Background(), "570")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if got := calls.Load(); got != 10 {
		t.Errorf("server calls = %d, want 10", got)
	}
}

func TestClient_NotFoundDoesNotTripCircuit(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)

	for i := 0; i < 12; i++ {
		if _, err := c.AppDetails(context.Background(), "1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: error = %v, want ErrNotFound", i, err)
		}
	}
	if st := c.cb.State(); st != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", st)
	}
}

func TestClient_MinDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, steamBody)
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	cfg.MinDelay = 50 * time.Millisecond
	c := NewSteamClient(&cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.AppDetails(context.Background(), "570"); err != nil {
			t.Fatalf("AppDetails() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 calls took %v, want >= ~100ms", elapsed)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, steamBody)
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	c := NewSteamClient(&cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.AppDetails(ctx, "570"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestFetcher_Run(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rawgBody)
	})
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("appids"); id != "570" {
			fmt.Fprintf(w, `{%q: {"success": false}}`, id)
			return
		}
		fmt.Fprint(w, steamBody)
	})
	mux.HandleFunc("/whois", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, whoisBody)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfg := testFetchConfig(srv.URL)
	cfg.RAWGQueries = []string{"witcher 3"}
	cfg.SteamAppIDs = []string{"570", "999"}
	cfg.WhoisDomains = []string{"steam.com"}

	f := New(Config{SourceDir: dir, Fetch: cfg})
	f.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	stats, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s := stats["steam"]; s.Requested != 2 || s.Written != 1 || s.NotFound != 1 {
		t.Errorf("steam stats = %+v, want requested 2 written 1 not_found 1", s)
	}
	if s := stats["rawg"]; s.Written != 1 {
		t.Errorf("rawg stats = %+v, want written 1", s)
	}

	tests := []struct {
		file string
		col  string
		want string
	}{
		{RAWGFileName, "rawg_id", "3328"},
		{RAWGFileName, "genres", "Action, RPG"},
		{SteamFileName, "app_id", "570"},
		{SteamFileName, "is_multiplayer", "true"},
		{SteamFileName, "price_usd", "0"},
		{WhoisFileName, "registrar_name", "MarkMonitor Inc."},
		{WhoisFileName, "category", "gaming_platform"},
		{WhoisFileName, "data_collected_date", "2026-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.col, func(t *testing.T) {
			tbl, _, err := dataset.ReadCSVFile(filepath.Join(dir, tt.file), []dataset.Encoding{dataset.UTF8})
			if err != nil {
				t.Fatalf("ReadCSVFile() error = %v", err)
			}
			if tbl.Len() != 1 {
				t.Fatalf("rows = %d, want 1", tbl.Len())
			}
			if got := tbl.Get(0, tt.col).String(); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.col, got, tt.want)
			}
		})
	}
}

func TestFetcher_SkipsWithoutAPIKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{%q: {"success": false}}`, r.URL.Query().Get("appids"))
	}))
	defer srv.Close()

	cfg := testFetchConfig(srv.URL)
	cfg.RAWGAPIKey = ""
	cfg.WhoisAPIKey = ""
	cfg.SteamAppIDs = []string{"1"}

	var logs bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&logs))
	defer logging.SetLogger(prev)

	dir := t.TempDir()
	stats, err := New(Config{SourceDir: dir, Fetch: cfg}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats["rawg"].Skipped == "" || stats["whois"].Skipped == "" {
		t.Errorf("stats = %+v, want rawg and whois skipped", stats)
	}
	if stats["steam"].Output != "" {
		t.Errorf("steam Output = %q, want nothing written", stats["steam"].Output)
	}
	for _, want := range []string{`"component":"fetch"`, `"stage":"fetch"`, `"message":"No record found"`} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("fetch logs missing %s: %s", want, logs.String())
		}
	}
}
