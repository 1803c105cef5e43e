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
	"github.com/bibliorank/bibliorank/internal/models"
)

// LibraryMetrics are the electronic-resource figures from an
// organization's library management system.
type LibraryMetrics struct {
	ElectronicResourceCount int
	ElectronicResourceUsage int
}

// libraryReport mirrors the library management system XML payload.
type libraryReport struct {
	XMLName       xml.Name `xml:"statistics"`
	ResourceCount int      `xml:"resource_count"`
	ResourceUsage int      `xml:"resource_usage"`
}

// LibraryClient queries per-organization library management system
// endpoints. Unlike Plausible and Uznel, the endpoint URL comes from each
// organization's integration config rather than global configuration.
type LibraryClient struct {
	cfg        config.LibraryConfig
	httpClient *http.Client
}

// NewLibraryClient creates a library management system client.
func NewLibraryClient(cfg config.LibraryConfig) *LibraryClient {
	return &LibraryClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch returns electronic resource metrics for the organization's
// configured integration, or an error when the integration is missing or
// inactive.
func (c *LibraryClient) Fetch(ctx context.Context, integration *models.LibraryIntegration, month, year int) (*LibraryMetrics, error) {
	if integration == nil || !integration.Active || integration.APIEndpoint == "" {
		return nil, fmt.Errorf("library integration not configured")
	}

	endpoint, err := url.Parse(integration.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid library endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("location", integration.LocationCode)
	q.Set("month", fmt.Sprintf("%d", month))
	q.Set("year", fmt.Sprintf("%d", year))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build library request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("library request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("library system returned %d: %s", resp.StatusCode, body)
	}

	var report libraryReport
	if err := xml.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode library response: %w", err)
	}

	return &LibraryMetrics{
		ElectronicResourceCount: report.ResourceCount,
		ElectronicResourceUsage: report.ResourceUsage,
	}, nil
}
