// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package sources provides clients for the external metric sources
// (Plausible analytics, the Uznel/BBS portal, and per-organization
// library management systems) and the collector that combines them into
// a scoreable metrics bundle.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/logging"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 16 * 1024

// PlausibleMetrics is the per-site monthly result from Plausible.
type PlausibleMetrics struct {
	Visitors  int
	Pageviews int
	NewsViews int
}

// plausibleAggregate mirrors the Plausible stats aggregate response.
type plausibleAggregate struct {
	Results struct {
		Visitors struct {
			Value float64 `json:"value"`
		} `json:"visitors"`
		Pageviews struct {
			Value float64 `json:"value"`
		} `json:"pageviews"`
	} `json:"results"`
}

// PlausibleClient fetches monthly visitor metrics from the Plausible
// stats API. Calls carry a fixed timeout and run behind a circuit
// breaker so a degraded Plausible instance cannot stall batch collection.
type PlausibleClient struct {
	cfg        config.PlausibleConfig
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[*plausibleAggregate]
}

// NewPlausibleClient creates a Plausible API client.
// Circuit breaker: opens after 60% failures over at least 5 requests,
// 1 minute measurement window, 2 minutes before half-open probing.
func NewPlausibleClient(cfg config.PlausibleConfig) *PlausibleClient {
	cb := gobreaker.NewCircuitBreaker[*plausibleAggregate](gobreaker.Settings{
		Name:        "plausible-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &PlausibleClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
	}
}

// Fetch returns the site's metrics for the given month: total visitors,
// total pageviews, and pageviews of news pages.
func (c *PlausibleClient) Fetch(ctx context.Context, siteID string, month, year int) (*PlausibleMetrics, error) {
	base, err := c.aggregate(ctx, siteID, month, year, "")
	if err != nil {
		return nil, err
	}

	metrics := &PlausibleMetrics{
		Visitors:  int(base.Results.Visitors.Value),
		Pageviews: int(base.Results.Pageviews.Value),
	}

	// News views come from a second aggregate filtered to the news
	// section. A failure here degrades to zero rather than failing the
	// whole site.
	news, err := c.aggregate(ctx, siteID, month, year, "event:page==/news**")
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("site", siteID).Msg("plausible news-page aggregate failed")
		return metrics, nil
	}
	metrics.NewsViews = int(news.Results.Pageviews.Value)

	return metrics, nil
}

// aggregate calls the Plausible stats aggregate endpoint through the
// circuit breaker.
func (c *PlausibleClient) aggregate(ctx context.Context, siteID string, month, year int, filters string) (*plausibleAggregate, error) {
	return c.cb.Execute(func() (*plausibleAggregate, error) {
		endpoint, err := url.Parse(c.cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid plausible url: %w", err)
		}
		endpoint.Path = "/api/v1/stats/aggregate"

		q := endpoint.Query()
		q.Set("site_id", siteID)
		q.Set("period", "month")
		q.Set("date", fmt.Sprintf("%04d-%02d-01", year, month))
		q.Set("metrics", "visitors,pageviews")
		if filters != "" {
			q.Set("filters", filters)
		}
		endpoint.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build plausible request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("plausible request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			return nil, fmt.Errorf("plausible returned %d: %s", resp.StatusCode, body)
		}

		var agg plausibleAggregate
		if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
			return nil, fmt.Errorf("decode plausible response: %w", err)
		}
		return &agg, nil
	})
}
