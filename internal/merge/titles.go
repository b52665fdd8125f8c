// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package merge

import (
	"strings"
	"unicode"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/metrics"
)

// rightSuffix is appended to game columns that collide with wellbeing columns.
const rightSuffix = "_game"

// NormalizeTitle folds a game title for joining: lowercase, every rune that
// is not a letter, digit or space becomes a space, and whitespace runs
// collapse. NormalizeTitle(NormalizeTitle(s)) == NormalizeTitle(s).
func NormalizeTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)
	return strings.Join(strings.Fields(mapped), " ")
}

// TitleStats counts how many left rows found a game.
type TitleStats struct {
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	MatchRate float64 `json:"match_rate"`
}

// JoinByTitle left-joins games onto sessions by normalized title. Games are
// indexed first-wins so every session row appears exactly once. Game columns
// whose names collide with session columns get the "_game" suffix.
func JoinByTitle(sessions *dataset.Table, sessionTitleCol string, games *dataset.Table, gameTitleCol string) (*dataset.Table, TitleStats) {
	index := make(map[string]int, games.Len())
	for i := 0; i < games.Len(); i++ {
		key := NormalizeTitle(games.Get(i, gameTitleCol).String())
		if key == "" {
			continue
		}
		if _, taken := index[key]; !taken {
			index[key] = i
		}
	}

	left := sessions.Columns()
	taken := make(map[string]bool, len(left))
	for _, c := range left {
		taken[c] = true
	}
	var rightCols, outRight []string
	for _, c := range games.Columns() {
		rightCols = append(rightCols, c)
		name := c
		if taken[name] {
			name += rightSuffix
		}
		taken[name] = true
		outRight = append(outRight, name)
	}

	out := dataset.New(append(left, outRight...))
	var stats TitleStats
	for i := 0; i < sessions.Len(); i++ {
		row := make(dataset.Row, 0, len(left)+len(rightCols))
		row = append(row, sessions.Row(i)...)

		j, ok := index[NormalizeTitle(sessions.Get(i, sessionTitleCol).String())]
		if ok {
			stats.Matched++
			for _, c := range rightCols {
				row = append(row, games.Get(j, c))
			}
		} else {
			stats.Unmatched++
			for range rightCols {
				row = append(row, dataset.Null())
			}
		}
		_ = out.Append(row) // width always matches
	}
	if total := stats.Matched + stats.Unmatched; total > 0 {
		stats.MatchRate = float64(stats.Matched) / float64(total)
	}

	metrics.TitleMatches.WithLabelValues("matched").Add(float64(stats.Matched))
	metrics.TitleMatches.WithLabelValues("unmatched").Add(float64(stats.Unmatched))
	return out, stats
}
