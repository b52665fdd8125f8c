// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"fmt"
	"strings"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

type wellbeingSchema struct {
	prov models.Provenance
}

func (s *wellbeingSchema) columns() []string {
	return append([]string{fieldSessionID, fieldGameTitle, fieldHoursPlayed}, models.WellbeingMetrics()...)
}

func (s *wellbeingSchema) prepare(claimed map[string][]string) []SkipRecord {
	var skips []SkipRecord
	for _, field := range []string{fieldSessionID, fieldGameTitle, fieldHoursPlayed} {
		if len(claimed[field]) == 0 {
			skips = append(skips, SkipRecord{Row: TableRow, Field: field, Reason: ReasonMissingColumn})
		}
	}
	return skips
}

func (s *wellbeingSchema) reconcileRow(v rowView, res *rowResult) {
	obs := &models.WellbeingSession{Provenance: s.prov, Metrics: make(map[string]float64)}
	cells := make(map[string]dataset.Value)

	obs.SessionID = identifier(v.value(fieldSessionID))
	if obs.SessionID == "" {
		obs.SessionID = generatedID(models.KindWellbeing.IDPrefix(), v.index)
		if v.has(fieldSessionID) {
			res.note(fieldSessionID, ReasonDefaulted, "generated "+obs.SessionID)
		}
	}
	cells[fieldSessionID] = dataset.String(obs.SessionID)

	if title := strings.TrimSpace(v.value(fieldGameTitle).String()); title != "" {
		obs.GameTitle = title
		cells[fieldGameTitle] = dataset.String(title)
	}

	hours, status := parseHours(v.value(fieldHoursPlayed))
	switch status {
	case parsedOK:
		obs.HoursPlayed = round2(models.SessionHoursRange.Clamp(hours))
	case parsedUnrecoverable:
		res.note(fieldHoursPlayed, ReasonUnrecoverable, fmt.Sprintf("%q, recorded as 0", v.value(fieldHoursPlayed).String()))
	case parsedMissing:
		if v.has(fieldHoursPlayed) {
			res.note(fieldHoursPlayed, ReasonDefaulted, "0")
		}
	}
	cells[fieldHoursPlayed] = dataset.Float(obs.HoursPlayed)

	for _, m := range models.WellbeingMetrics() {
		f, ok := parseFloat(v.value(m))
		if !ok {
			continue
		}
		f = round2(models.WellbeingMetricRange.Clamp(f))
		obs.Metrics[m] = f
		cells[m] = dataset.Float(f)
	}

	res.obs = observationRow{model: obs, cells: cells}
}
