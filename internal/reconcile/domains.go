// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

type domainSchema struct{}

func (s *domainSchema) columns() []string {
	return []string{
		fieldDomain, fieldRegistrar, fieldCreated, fieldExpires, fieldUpdated, fieldStatus,
		fieldNameServers, fieldCountry, fieldOrg, fieldCategory,
	}
}

func (s *domainSchema) prepare(claimed map[string][]string) []SkipRecord {
	if len(claimed[fieldDomain]) == 0 {
		return []SkipRecord{{Row: TableRow, Field: fieldDomain, Reason: ReasonMissingColumn, Detail: "no domain column, every row dropped"}}
	}
	return nil
}

func (s *domainSchema) reconcileRow(v rowView, res *rowResult) {
	domain := NormalizeDomain(v.value(fieldDomain).String())
	if domain == "" {
		res.note(fieldDomain, ReasonMissingKey, "")
		return
	}

	obs := &models.DomainRegistration{Domain: domain}
	cells := map[string]dataset.Value{fieldDomain: dataset.String(domain)}

	text := func(field string) string {
		val := strings.TrimSpace(v.value(field).String())
		if val != "" {
			cells[field] = dataset.String(val)
		}
		return val
	}
	obs.Registrar = text(fieldRegistrar)
	obs.Status = text(fieldStatus)
	obs.Country = text(fieldCountry)
	obs.Org = text(fieldOrg)

	for _, ts := range []struct {
		field string
		dst   **time.Time
	}{
		{fieldCreated, &obs.CreatedAt},
		{fieldExpires, &obs.ExpiresAt},
		{fieldUpdated, &obs.UpdatedAt},
	} {
		t, status := parseTimestamp(v.value(ts.field))
		switch status {
		case parsedOK:
			*ts.dst = &t
			cells[ts.field] = dataset.String(t.Format(time.RFC3339))
		case parsedUnrecoverable:
			res.note(ts.field, ReasonUnrecoverable, fmt.Sprintf("%q", v.value(ts.field).String()))
		}
	}

	for _, ns := range SplitList(strings.ToLower(v.value(fieldNameServers).String()), ",;| \t\n") {
		obs.NameServers = append(obs.NameServers, strings.TrimSuffix(ns, "."))
	}
	if len(obs.NameServers) > 0 {
		cells[fieldNameServers] = dataset.String(strings.Join(obs.NameServers, "|"))
	}

	obs.Category = domainCategory(v.value(fieldCategory), domain)
	cells[fieldCategory] = dataset.String(string(obs.Category))

	res.obs = observationRow{model: obs, cells: cells}
}

// NormalizeDomain lowercases a domain and strips any scheme, path and
// trailing dot.
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, ".")
}

// domainCategory uses the source category when it is in the closed set. A
// boolean gaming-platform flag is honored when true; anything else falls
// back to the curated lists.
func domainCategory(v dataset.Value, domain string) models.DomainCategory {
	if !v.IsNull() {
		c := models.DomainCategory(strings.ToLower(strings.TrimSpace(v.String())))
		if c.Valid() {
			return c
		}
		if b, ok := v.Bool(); ok && b {
			return models.CategoryGamingPlatform
		}
	}
	return models.CategorizeDomain(domain)
}
