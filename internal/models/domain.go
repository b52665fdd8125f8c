// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package models

import "strings"

// DomainCategory is the closed set of categories a registered domain can carry.
type DomainCategory string

const (
	CategoryGamingPlatform          DomainCategory = "gaming_platform"
	CategoryGamingCompany           DomainCategory = "gaming_company"
	CategorySocialPlatform          DomainCategory = "social_platform"
	CategoryMentalHealthResource    DomainCategory = "mental_health_resource"
	CategoryGamingAddictionResource DomainCategory = "gaming_addiction_resource"
	CategoryOther                   DomainCategory = "other"
)

// DomainCategories returns the closed category set.
func DomainCategories() []DomainCategory {
	return []DomainCategory{
		CategoryGamingPlatform,
		CategoryGamingCompany,
		CategorySocialPlatform,
		CategoryMentalHealthResource,
		CategoryGamingAddictionResource,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed set.
func (c DomainCategory) Valid() bool {
	for _, known := range DomainCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// curatedDomains lists the researched domains in collection order.
var curatedDomains = []struct {
	domain   string
	category DomainCategory
}{
	{"steam.com", CategoryGamingPlatform},
	{"epicgames.com", CategoryGamingPlatform},
	{"xbox.com", CategoryGamingPlatform},
	{"playstation.com", CategoryGamingPlatform},
	{"nintendo.com", CategoryGamingPlatform},
	{"twitch.tv", CategorySocialPlatform},
	{"discord.com", CategorySocialPlatform},
	{"activision.com", CategoryGamingCompany},
	{"blizzard.com", CategoryGamingCompany},
	{"ea.com", CategoryGamingCompany},
	{"ubisoft.com", CategoryGamingCompany},
	{"rockstargames.com", CategoryGamingCompany},
	{"valve.com", CategoryOther},
	{"riotgames.com", CategoryOther},
	{"reddit.com", CategorySocialPlatform},
	{"ign.com", CategoryOther},
	{"gamespot.com", CategoryOther},
	{"polygon.com", CategoryOther},
	{"kotaku.com", CategoryOther},
	{"nami.org", CategoryMentalHealthResource},
	{"mentalhealth.gov", CategoryMentalHealthResource},
	{"who.int", CategoryMentalHealthResource},
	{"apa.org", CategoryMentalHealthResource},
	{"olganon.org", CategoryGamingAddictionResource},
	{"gamingtherapis.org", CategoryGamingAddictionResource},
	{"cgaa.info", CategoryGamingAddictionResource},
}

// CuratedDomains returns the gaming and mental-health domains tracked by default.
func CuratedDomains() []string {
	out := make([]string, len(curatedDomains))
	for i, d := range curatedDomains {
		out[i] = d.domain
	}
	return out
}

// CategorizeDomain returns the curated category for a domain, or CategoryOther.
func CategorizeDomain(domain string) DomainCategory {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	for _, d := range curatedDomains {
		if d.domain == domain {
			return d.category
		}
	}
	return CategoryOther
}
