// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bibliorank/bibliorank/internal/config"
)

// UznelMetrics are the interactive-service figures reported by the
// Uznel/BBS portal for one organization and month.
type UznelMetrics struct {
	InteractiveServiceUsage int
	PersonalAccountCount    int
}

// uznelReport mirrors the Uznel XML report payload.
type uznelReport struct {
	XMLName     xml.Name `xml:"report"`
	Interactive int      `xml:"interactive_usage"`
	Accounts    int      `xml:"personal_accounts"`
}

// UznelClient scrapes the Uznel/BBS XML endpoint for interactive-service
// usage and personal account counts.
type UznelClient struct {
	cfg        config.UznelConfig
	httpClient *http.Client
}

// NewUznelClient creates an Uznel portal client.
func NewUznelClient(cfg config.UznelConfig) *UznelClient {
	return &UznelClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch returns the organization's Uznel metrics for the given month.
// The organization is identified on the portal by its normalized domain.
func (c *UznelClient) Fetch(ctx context.Context, domain string, month, year int) (*UznelMetrics, error) {
	endpoint, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid uznel url: %w", err)
	}
	q := endpoint.Query()
	q.Set("domain", domain)
	q.Set("month", fmt.Sprintf("%d", month))
	q.Set("year", fmt.Sprintf("%d", year))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build uznel request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uznel request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("uznel returned %d: %s", resp.StatusCode, body)
	}

	var report uznelReport
	if err := xml.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode uznel response: %w", err)
	}

	return &UznelMetrics{
		InteractiveServiceUsage: report.Interactive,
		PersonalAccountCount:    report.Accounts,
	}, nil
}
