// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// Cleaned game columns that are not claim fields.
const (
	colReleaseYear = "release_year"
	colGameSource  = "source"
)

// UnknownTitle replaces a missing game title.
const UnknownTitle = "Unknown Game"

var yearRange = models.ScaleRange{Min: 1950, Max: 2100}

type gameSchema struct {
	source string
}

func (s *gameSchema) columns() []string {
	return []string{
		fieldGameID, fieldTitle, fieldGenres, fieldDeveloper, fieldPrice, fieldRating,
		fieldReviewCount, colReleaseYear, fieldMultiplayer, fieldMicrotransact, colGameSource,
	}
}

func (s *gameSchema) prepare(claimed map[string][]string) []SkipRecord {
	var skips []SkipRecord
	if len(claimed[fieldGameID]) == 0 {
		skips = append(skips, SkipRecord{Row: TableRow, Field: fieldGameID, Reason: ReasonMissingColumn, Detail: "no id column, every row dropped"})
	}
	if len(claimed[fieldTitle]) == 0 {
		skips = append(skips, SkipRecord{Row: TableRow, Field: fieldTitle, Reason: ReasonMissingColumn, Detail: "no title column"})
	}
	return skips
}

func (s *gameSchema) reconcileRow(v rowView, res *rowResult) {
	id, ok := v.value(fieldGameID).Int()
	if !ok || id <= 0 {
		res.note(fieldGameID, ReasonMissingKey, fmt.Sprintf("%q", v.value(fieldGameID).String()))
		return
	}

	obs := &models.GameMetadata{Source: s.source, GameID: id}
	cells := map[string]dataset.Value{
		fieldGameID:   dataset.Int(id),
		colGameSource: dataset.String(s.source),
	}

	obs.Title = strings.TrimSpace(v.value(fieldTitle).String())
	if obs.Title == "" {
		obs.Title = UnknownTitle
		res.note(fieldTitle, ReasonDefaulted, UnknownTitle)
	}
	cells[fieldTitle] = dataset.String(obs.Title)

	obs.Genres = SplitList(v.value(fieldGenres).String(), ",;|")
	if len(obs.Genres) > 0 {
		cells[fieldGenres] = dataset.String(strings.Join(obs.Genres, ", "))
	}

	if dev := strings.TrimSpace(v.value(fieldDeveloper).String()); dev != "" {
		obs.Developer = dev
		cells[fieldDeveloper] = dataset.String(dev)
	}

	if price, ok := parsePrice(v.value(fieldPrice)); ok {
		price = round2(math.Max(0, price))
		obs.Price = &price
		cells[fieldPrice] = dataset.Float(price)
	}

	if rating, ok := gameRating(v); ok {
		obs.Rating = &rating
		cells[fieldRating] = dataset.Float(rating)
	}

	if count, ok := reviewCount(v); ok {
		obs.ReviewCount = &count
		cells[fieldReviewCount] = dataset.Int(count)
	}

	if released := v.value(fieldReleased); !released.IsNull() {
		if year, ok := parseYear(released); ok && yearRange.Contains(float64(year)) {
			obs.ReleaseYear = &year
			cells[colReleaseYear] = dataset.Int(int64(year))
		} else {
			res.note(colReleaseYear, ReasonUnrecoverable, fmt.Sprintf("%q", released.String()))
		}
	}

	if b, ok := v.value(fieldMultiplayer).Bool(); ok {
		obs.IsMultiplayer = &b
		cells[fieldMultiplayer] = dataset.Bool(b)
	}
	if b, ok := v.value(fieldMicrotransact).Bool(); ok {
		obs.HasMicrotransactions = &b
		cells[fieldMicrotransact] = dataset.Bool(b)
	}

	res.obs = observationRow{model: obs, cells: cells}
}

func parsePrice(v dataset.Value) (float64, bool) {
	if strings.EqualFold(strings.TrimSpace(v.String()), "free") {
		return 0, true
	}
	return parseFloat(v)
}

// gameRating prefers a positive metacritic score. A user rating on a 0-5
// scale is lifted onto 0-100.
func gameRating(v rowView) (float64, bool) {
	if mc, ok := parseFloat(v.value(fieldMetacritic)); ok && mc > 0 {
		return round2(models.RatingRange.Clamp(mc)), true
	}
	r, ok := parseFloat(v.value(fieldRating))
	if !ok {
		return 0, false
	}
	if r <= 5 {
		r *= 20
	}
	return round2(models.RatingRange.Clamp(r)), true
}

// reviewCount takes an explicit count, else positive plus negative reviews.
func reviewCount(v rowView) (int64, bool) {
	if n, ok := parseFloat(v.value(fieldReviewCount)); ok {
		return int64(math.Max(0, math.Round(n))), true
	}
	pos, posOK := parseFloat(v.value(fieldPositive))
	neg, negOK := parseFloat(v.value(fieldNegative))
	if !posOK && !negOK {
		return 0, false
	}
	return int64(math.Max(0, math.Round(pos)) + math.Max(0, math.Round(neg))), true
}

// SplitList splits s on any of the separator runes, trimming entries and
// dropping empty ones.
func SplitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
