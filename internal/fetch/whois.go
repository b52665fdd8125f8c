// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/dataset"
	"github.com/tomtom215/respawn/internal/models"
)

// WhoisFileName is the raw domain registration file the ingest loader probes first.
const WhoisFileName = "whois_gaming_domains.csv"

// ErrWhoisAPI is returned when the WHOIS service answers with an error payload.
var ErrWhoisAPI = errors.New("whois api error")

type whoisDates struct {
	RegistrarName string `json:"registrarName"`
	CreatedDate   string `json:"createdDate"`
	ExpiresDate   string `json:"expiresDate"`
	UpdatedDate   string `json:"updatedDate"`
}

// WhoisRecord is the WhoisRecord object of a WHOIS XML API response.
type WhoisRecord struct {
	whoisDates
	DomainName  string `json:"domainName"`
	Status      string `json:"status"`
	NameServers *struct {
		HostNames []string `json:"hostNames"`
	} `json:"nameServers"`
	Registrant *struct {
		Organization string `json:"organization"`
		Country      string `json:"country"`
	} `json:"registrant"`
	ContactEmail string      `json:"contactEmail"`
	RegistryData *whoisDates `json:"registryData"`
}

// HostNames returns the record's name servers.
func (r WhoisRecord) HostNames() []string {
	if r.NameServers == nil {
		return nil
	}
	return r.NameServers.HostNames
}

// fillFromRegistry copies registry dates into fields the registrar left empty.
func (r *WhoisRecord) fillFromRegistry() {
	if r.RegistryData == nil {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&r.RegistrarName, r.RegistryData.RegistrarName)
	fill(&r.CreatedDate, r.RegistryData.CreatedDate)
	fill(&r.ExpiresDate, r.RegistryData.ExpiresDate)
	fill(&r.UpdatedDate, r.RegistryData.UpdatedDate)
}

type whoisResponse struct {
	WhoisRecord  *WhoisRecord `json:"WhoisRecord"`
	ErrorMessage *struct {
		ErrorCode string `json:"errorCode"`
		Msg       string `json:"msg"`
	} `json:"ErrorMessage"`
}

// WhoisClient looks up domain registrations.
type WhoisClient struct {
	*client
	baseURL string
	apiKey  string
}

// NewWhoisClient creates a WHOIS client from the fetch settings.
func NewWhoisClient(cfg *config.FetchConfig) *WhoisClient {
	return &WhoisClient{
		client:  newClient("whois", cfg),
		baseURL: cfg.WhoisBaseURL,
		apiKey:  cfg.WhoisAPIKey,
	}
}

// Lookup returns the registration record for domain.
func (c *WhoisClient) Lookup(ctx context.Context, domain string) (*WhoisRecord, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("domainName", domain)
	params.Set("outputFormat", "JSON")

	var resp whoisResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", domain, err)
	}
	if resp.ErrorMessage != nil {
		return nil, fmt.Errorf("lookup %s: %w: %s %s", domain, ErrWhoisAPI, resp.ErrorMessage.ErrorCode, resp.ErrorMessage.Msg)
	}
	if resp.WhoisRecord == nil {
		return nil, fmt.Errorf("lookup %s: whois: %w", domain, ErrNotFound)
	}
	rec := resp.WhoisRecord
	rec.fillFromRegistry()
	if rec.DomainName == "" {
		rec.DomainName = domain
	}
	return rec, nil
}

var whoisColumns = []string{
	"domain", "registrar_name", "creation_date", "expiration_date", "updated_date",
	"status", "name_servers", "registrant_country", "registrant_organization",
	"admin_email", "category", "data_collected_date",
}

// WhoisTable lays records out in the raw WHOIS file layout. Each domain is
// categorized from the curated lists.
func WhoisTable(records []WhoisRecord, collectedAt time.Time) *dataset.Table {
	tbl := dataset.New(whoisColumns)
	collected := dataset.String(collectedAt.UTC().Format(time.RFC3339))
	for _, r := range records {
		country, org := dataset.Null(), dataset.Null()
		if r.Registrant != nil {
			country = textOrNull(r.Registrant.Country)
			org = textOrNull(r.Registrant.Organization)
		}
		domain := strings.ToLower(r.DomainName)
		tbl.AppendRecord(map[string]dataset.Value{
			"domain":                  textOrNull(domain),
			"registrar_name":          textOrNull(r.RegistrarName),
			"creation_date":           textOrNull(r.CreatedDate),
			"expiration_date":         textOrNull(r.ExpiresDate),
			"updated_date":            textOrNull(r.UpdatedDate),
			"status":                  textOrNull(r.Status),
			"name_servers":            joinOrNull(r.HostNames()),
			"registrant_country":      country,
			"registrant_organization": org,
			"admin_email":             textOrNull(r.ContactEmail),
			"category":                dataset.String(string(models.CategorizeDomain(domain))),
			"data_collected_date":     collected,
		})
	}
	return tbl
}

// WriteWhoisCSV writes records to path.
func WriteWhoisCSV(path string, records []WhoisRecord, collectedAt time.Time) error {
	return dataset.WriteCSVFile(path, WhoisTable(records, collectedAt))
}
