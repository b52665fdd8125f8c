// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package ingest

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// Synthetic row counts per kind. Domains get one row per curated domain.
var syntheticRows = map[models.Kind]int{
	models.KindAnxiety:          1000,
	models.KindAggression:       800,
	models.KindPredictionScales: 1200,
	models.KindWellbeing:        1500,
	models.KindSteamGames:       500,
	models.KindGameMetadata:     300,
}

// SyntheticRows returns the number of rows Synthesize produces for kind.
func SyntheticRows(kind models.Kind) int {
	if kind == models.KindDomains {
		return len(models.CuratedDomains())
	}
	return syntheticRows[kind]
}

// popularTitles seeds wellbeing sessions and the first RAWG rows so that the
// title merge has something to match.
var popularTitles = []string{
	"The Witcher 3", "Cyberpunk 2077", "Minecraft", "Fortnite", "Counter-Strike",
	"League of Legends", "World of Warcraft", "Apex Legends", "Among Us", "Fall Guys",
	"Valheim", "Hades", "Animal Crossing", "Stardew Valley", "Terraria",
}

var steamGenres = []string{"Action", "Adventure", "Strategy", "RPG", "Simulation", "Sports", "Racing", "Indie"}

// syntheticEpoch anchors every generated timestamp so output is reproducible.
var syntheticEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Synthesize generates the deterministic stand-in table for kind. The same
// seed always yields the same table, independent of which other kinds were
// generated first.
func Synthesize(kind models.Kind, seed int64) (*dataset.Table, error) {
	g := newGenerator(kind, seed)
	switch kind {
	case models.KindAnxiety:
		return g.anxiety(), nil
	case models.KindAggression:
		return g.aggression(), nil
	case models.KindPredictionScales:
		return g.predictionScales(), nil
	case models.KindWellbeing:
		return g.wellbeing(), nil
	case models.KindSteamGames:
		return g.steamGames(), nil
	case models.KindGameMetadata:
		return g.gameMetadata(), nil
	case models.KindDomains:
		return g.domains(), nil
	default:
		return nil, fmt.Errorf("no synthetic generator for kind %q", kind)
	}
}

type generator struct {
	rng *rand.Rand
	n   int
}

func newGenerator(kind models.Kind, seed int64) *generator {
	// Stream selection by kind keeps each kind's sequence independent.
	var stream uint64
	for _, c := range string(kind) {
		stream = stream*31 + uint64(c)
	}
	return &generator{
		rng: rand.New(rand.NewPCG(uint64(seed), stream)), //nolint:gosec // reproducible sample data
		n:   SyntheticRows(kind),
	}
}

func (g *generator) normal(mean, sd float64) float64 { return mean + sd*g.rng.NormFloat64() }

func (g *generator) lognormal(mu, sigma float64) float64 { return math.Exp(g.normal(mu, sigma)) }

func (g *generator) exponential(scale float64) float64 { return g.rng.ExpFloat64() * scale }

func (g *generator) choice(options []string) string { return options[g.rng.IntN(len(options))] }

func (g *generator) weighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	for i, w := range weights {
		if r < w {
			return options[i]
		}
		r -= w
	}
	return options[len(options)-1]
}

func (g *generator) bernoulli(p float64) bool { return g.rng.Float64() < p }

func clip(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func prefixedID(prefix string, i int) string { return fmt.Sprintf("%s%04d", prefix, i) }

func (g *generator) anxiety() *dataset.Table {
	t := dataset.New([]string{
		"participant_id", "age", "gender", "gaming_hours_weekly", "gad_total", "gaming_preference",
	})
	for i := 1; i <= g.n; i++ {
		t.AppendRecord(map[string]dataset.Value{
			"participant_id":      dataset.String(prefixedID("A", i)),
			"age":                 dataset.Int(int64(clip(g.normal(25, 8), 13, 65))),
			"gender":              dataset.String(g.weighted([]string{"Male", "Female", "Other"}, []float64{0.55, 0.4, 0.05})),
			"gaming_hours_weekly": dataset.Float(round(clip(g.lognormal(2.5, 0.8), 0, 168), 2)),
			"gad_total":           dataset.Int(int64(math.Round(clip(g.normal(6.5, 4), 0, 21)))),
			"gaming_preference":   dataset.String(g.choice([]string{"Action", "Strategy", "RPG", "Casual"})),
		})
	}
	return t
}

func (g *generator) aggression() *dataset.Table {
	t := dataset.New([]string{
		"participant_id", "age", "gender", "gaming_hours_daily", "aggression_score",
		"gaming_preference", "competitive_gaming",
	})
	for i := 1; i <= g.n; i++ {
		t.AppendRecord(map[string]dataset.Value{
			"participant_id":     dataset.String(prefixedID("G", i)),
			"age":                dataset.Int(int64(clip(g.normal(23, 7), 13, 60))),
			"gender":             dataset.String(g.weighted([]string{"Male", "Female", "Other"}, []float64{0.6, 0.35, 0.05})),
			"gaming_hours_daily": dataset.Float(round(clip(g.lognormal(1.2, 0.6), 0.5, 16), 2)),
			"aggression_score":   dataset.Int(int64(math.Round(clip(g.normal(14, 7), 0, 40)))),
			"gaming_preference":  dataset.String(g.choice([]string{"FPS", "MOBA", "RPG", "Strategy", "Sports"})),
			"competitive_gaming": dataset.Bool(g.bernoulli(0.4)),
		})
	}
	return t
}

func (g *generator) predictionScales() *dataset.Table {
	means := []float64{3.5, 4.2, 3.8, 5.1, 4.7, 5.3, 5.8}
	sds := []float64{1.5, 1.8, 1.6, 1.4, 1.7, 1.3, 1.2}
	subscales := models.PredictionSubscales()

	cols := append([]string{"participant_id", "age", "gender"}, subscales...)
	cols = append(cols, "gaming_hours_weekly")
	t := dataset.New(cols)
	for i := 1; i <= g.n; i++ {
		rec := map[string]dataset.Value{
			"participant_id": dataset.String(prefixedID("S", i)),
			"age":            dataset.Int(int64(clip(g.normal(24, 6), 13, 65))),
			"gender":         dataset.String(g.weighted([]string{"Male", "Female", "Other"}, []float64{0.5, 0.45, 0.05})),
		}
		for k, name := range subscales {
			rec[name] = dataset.Float(round(clip(g.normal(means[k], sds[k]), 1, 7), 2))
		}
		rec["gaming_hours_weekly"] = dataset.Float(round(clip(g.lognormal(2.8, 0.7), 1, 100), 2))
		t.AppendRecord(rec)
	}
	return t
}

func (g *generator) wellbeing() *dataset.Table {
	metrics := models.WellbeingMetrics()
	// Means and spreads on the 1-10 scale.
	means := []float64{7.6, 7.0, 7.4, 8.2, 8.0, 7.2, 8.6, 6.4, 5.0, 6.2, 6.6}
	sds := []float64{2.4, 2.6, 2.2, 2.0, 2.4, 2.8, 2.2, 2.6, 2.0, 1.8, 1.6}

	cols := append([]string{"session_id", "game_title", "hours_played"}, metrics...)
	t := dataset.New(cols)
	for i := 1; i <= g.n; i++ {
		rec := map[string]dataset.Value{
			"session_id":   dataset.String(prefixedID("W", i)),
			"game_title":   dataset.String(g.choice(popularTitles)),
			"hours_played": dataset.Float(round(clip(g.lognormal(2.3, 0.9), 0.5, 200), 2)),
		}
		for k, name := range metrics {
			rec[name] = dataset.Float(round(clip(g.normal(means[k], sds[k]), 1, 10), 2))
		}
		t.AppendRecord(rec)
	}
	return t
}

func (g *generator) steamGames() *dataset.Table {
	t := dataset.New([]string{
		"app_id", "name", "release_date", "genre", "developer", "price",
		"positive_reviews", "negative_reviews", "metacritic_score",
	})
	start := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)
	span := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC).Sub(start)
	for i := 0; i < g.n; i++ {
		var released time.Time
		if g.n > 1 {
			released = start.Add(time.Duration(float64(span) * float64(i) / float64(g.n-1)))
		} else {
			released = start
		}
		t.AppendRecord(map[string]dataset.Value{
			"app_id":           dataset.Int(int64(100000 + i)),
			"name":             dataset.String(fmt.Sprintf("Game_%d", i+1)),
			"release_date":     dataset.String(released.Format(time.DateOnly)),
			"genre":            dataset.String(g.choice(steamGenres)),
			"developer":        dataset.String(fmt.Sprintf("Studio %d", g.rng.IntN(60)+1)),
			"price":            dataset.Float(round(clip(g.exponential(15), 0, 60), 2)),
			"positive_reviews": dataset.Int(int64(g.exponential(1000))),
			"negative_reviews": dataset.Int(int64(g.exponential(200))),
			"metacritic_score": dataset.Int(int64(clip(g.normal(75, 15), 40, 100))),
		})
	}
	return t
}

func (g *generator) gameMetadata() *dataset.Table {
	t := dataset.New([]string{
		"id", "name", "released", "rating", "ratings_count", "metacritic", "playtime", "genres", "platforms",
	})
	platforms := []string{"PC", "PlayStation 5", "Xbox Series S/X", "Nintendo Switch"}
	for i := 1; i <= g.n; i++ {
		name := fmt.Sprintf("RAWG Game %d", i)
		if i <= len(popularTitles) {
			name = popularTitles[i-1]
		}
		genres := []string{g.choice(steamGenres)}
		if g.bernoulli(0.5) {
			if second := g.choice(steamGenres); second != genres[0] {
				genres = append(genres, second)
			}
		}
		released := syntheticEpoch.AddDate(-g.rng.IntN(15)-1, -g.rng.IntN(12), -g.rng.IntN(28))
		t.AppendRecord(map[string]dataset.Value{
			"id":            dataset.Int(int64(i)),
			"name":          dataset.String(name),
			"released":      dataset.String(released.Format(time.DateOnly)),
			"rating":        dataset.Float(round(clip(g.normal(3.8, 0.6), 0, 5), 2)),
			"ratings_count": dataset.Int(int64(g.exponential(500))),
			"metacritic":    dataset.Int(int64(clip(g.normal(78, 10), 40, 100))),
			"playtime":      dataset.Int(int64(g.exponential(20))),
			"genres":        dataset.String(strings.Join(genres, ", ")),
			"platforms":     dataset.String(strings.Join(platforms[:g.rng.IntN(len(platforms))+1], ", ")),
		})
	}
	return t
}

func (g *generator) domains() *dataset.Table {
	t := dataset.New([]string{
		"domain", "registrar_name", "creation_date", "expiration_date", "updated_date", "status",
		"name_servers", "registrant_country", "registrant_organization", "category", "data_collected_date",
	})
	registrars := []string{"MarkMonitor Inc.", "CSC Corporate Domains, Inc.", "GoDaddy.com, LLC", "Gandi SAS"}
	for _, domain := range models.CuratedDomains() {
		created := time.Date(1995+g.rng.IntN(20), time.Month(g.rng.IntN(12)+1), g.rng.IntN(28)+1, 0, 0, 0, 0, time.UTC)
		t.AppendRecord(map[string]dataset.Value{
			"domain":                  dataset.String(domain),
			"registrar_name":          dataset.String(g.choice(registrars)),
			"creation_date":           dataset.String(created.Format(time.RFC3339)),
			"expiration_date":         dataset.String(syntheticEpoch.AddDate(g.rng.IntN(8)+1, 0, 0).Format(time.RFC3339)),
			"updated_date":            dataset.String(syntheticEpoch.AddDate(0, -g.rng.IntN(24), 0).Format(time.RFC3339)),
			"status":                  dataset.String("clientTransferProhibited"),
			"name_servers":            dataset.String("ns1." + domain + "|ns2." + domain),
			"registrant_country":      dataset.String("US"),
			"registrant_organization": dataset.Null(),
			"category":                dataset.String(string(models.CategorizeDomain(domain))),
			"data_collected_date":     dataset.String(syntheticEpoch.Format(time.RFC3339)),
		})
	}
	return t
}
