// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/logging"
	"github.com/bibliorank/bibliorank/internal/metrics"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/scoring"
)

// Source status values recorded in MetricsBundle.Sources.
const (
	sourceOK       = "ok"
	sourceError    = "error"
	sourceDisabled = "disabled"
)

// PlausibleCacheStore is the persisted cache the collector reads through.
type PlausibleCacheStore interface {
	// GetPlausibleCache returns the cached entry, or nil when absent.
	GetPlausibleCache(ctx context.Context, siteID string, month, year int) (*models.PlausibleCache, error)
	UpsertPlausibleCache(ctx context.Context, entry *models.PlausibleCache) error
	DeletePlausibleCache(ctx context.Context, siteID string, month, year int) error
}

// MetricsCollector is the interface the ranking assembler consumes.
type MetricsCollector interface {
	GetMetrics(ctx context.Context, org *models.Organization, month, year int, force bool) (models.MetricsBundle, error)

	// GetPlausibleMetrics collects only the Plausible-backed metrics,
	// leaving the Uznel and library fields zero.
	GetPlausibleMetrics(ctx context.Context, org *models.Organization, month, year int, force bool) (models.MetricsBundle, error)
}

// Collector combines the three metric sources into one bundle per
// organization and period. Partial failures never fail the bundle: the
// failed metrics are zero-filled and the failure is recorded in
// Bundle.Errors, so a degraded upstream degrades scores instead of
// breaking collection.
type Collector struct {
	plausible *PlausibleClient
	uznel     *UznelClient
	library   *LibraryClient
	cache     PlausibleCacheStore

	plausibleEnabled bool
	uznelEnabled     bool
	cacheTTL         time.Duration
	now              func() time.Time
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector wires the metric sources and the Plausible cache store.
func NewCollector(cfg *config.Config, cache PlausibleCacheStore) *Collector {
	return &Collector{
		plausible:        NewPlausibleClient(cfg.Plausible),
		uznel:            NewUznelClient(cfg.Uznel),
		library:          NewLibraryClient(cfg.Library),
		cache:            cache,
		plausibleEnabled: cfg.Plausible.Enabled,
		uznelEnabled:     cfg.Uznel.Enabled,
		cacheTTL:         cfg.Plausible.CacheTTL,
		now:              time.Now,
	}
}

// WithClock overrides the collector's clock. Test hook.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// GetMetrics collects the seven-metric bundle for an organization and
// period. force bypasses the Plausible cache by deleting the key first.
// The returned error is non-nil only when the context is done; upstream
// failures are carried inside the bundle.
func (c *Collector) GetMetrics(ctx context.Context, org *models.Organization, month, year int, force bool) (models.MetricsBundle, error) {
	bundle := models.MetricsBundle{}
	domain := scoring.NormalizeDomain(org.URL)

	c.collectPlausible(ctx, &bundle, domain, month, year, force)
	if err := ctx.Err(); err != nil {
		return bundle, err
	}

	c.collectUznel(ctx, &bundle, domain, month, year)
	if err := ctx.Err(); err != nil {
		return bundle, err
	}

	c.collectLibrary(ctx, &bundle, org, month, year)
	return bundle, ctx.Err()
}

// GetPlausibleMetrics collects the Plausible-backed metrics alone, for
// the targeted analytics refresh endpoint. Uznel and library sources
// are reported as disabled in the bundle.
func (c *Collector) GetPlausibleMetrics(ctx context.Context, org *models.Organization, month, year int, force bool) (models.MetricsBundle, error) {
	bundle := models.MetricsBundle{}
	domain := scoring.NormalizeDomain(org.URL)

	c.collectPlausible(ctx, &bundle, domain, month, year, force)
	bundle.Sources.Uznel = sourceDisabled
	bundle.Sources.Library = sourceDisabled
	return bundle, ctx.Err()
}

func (c *Collector) collectPlausible(ctx context.Context, bundle *models.MetricsBundle, domain string, month, year int, force bool) {
	if !c.plausibleEnabled {
		bundle.Sources.Plausible = sourceDisabled
		return
	}

	if force {
		if err := c.cache.DeletePlausibleCache(ctx, domain, month, year); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("site", domain).Msg("plausible cache invalidation failed")
		}
	} else if cached := c.freshCacheEntry(ctx, domain, month, year); cached != nil {
		bundle.VisitCount = cached.Visitors
		bundle.PageVisits = cached.Pageviews
		bundle.NewsViewCount = cached.NewsViews
		bundle.Sources.Plausible = sourceOK
		return
	}

	start := c.now()
	fetched, err := c.plausible.Fetch(ctx, domain, month, year)
	metrics.RecordSourceFetch("plausible", time.Since(start), err)
	if err != nil {
		bundle.Errors = append(bundle.Errors, fmt.Sprintf("plausible: %v", err))
		bundle.Sources.Plausible = sourceError
		return
	}

	bundle.VisitCount = fetched.Visitors
	bundle.PageVisits = fetched.Pageviews
	bundle.NewsViewCount = fetched.NewsViews
	bundle.Sources.Plausible = sourceOK

	// Cache write failure must not fail collection; the next request
	// simply refetches.
	entry := &models.PlausibleCache{
		SiteID:      domain,
		Month:       month,
		Year:        year,
		Visitors:    fetched.Visitors,
		Pageviews:   fetched.Pageviews,
		NewsViews:   fetched.NewsViews,
		LastUpdated: c.now(),
	}
	if err := c.cache.UpsertPlausibleCache(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("site", domain).Msg("plausible cache write failed")
	}
}

// freshCacheEntry returns a cached entry younger than the TTL, or nil.
// Staleness is checked at read time; nothing actively evicts.
func (c *Collector) freshCacheEntry(ctx context.Context, domain string, month, year int) *models.PlausibleCache {
	cached, err := c.cache.GetPlausibleCache(ctx, domain, month, year)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("site", domain).Msg("plausible cache read failed")
		return nil
	}
	if cached == nil || c.now().Sub(cached.LastUpdated) > c.cacheTTL {
		return nil
	}
	return cached
}

func (c *Collector) collectUznel(ctx context.Context, bundle *models.MetricsBundle, domain string, month, year int) {
	if !c.uznelEnabled {
		bundle.Sources.Uznel = sourceDisabled
		return
	}

	start := c.now()
	fetched, err := c.uznel.Fetch(ctx, domain, month, year)
	metrics.RecordSourceFetch("uznel", time.Since(start), err)
	if err != nil {
		bundle.Errors = append(bundle.Errors, fmt.Sprintf("uznel: %v", err))
		bundle.Sources.Uznel = sourceError
		return
	}
	bundle.InteractiveServiceUsage = fetched.InteractiveServiceUsage
	bundle.PersonalAccountCount = fetched.PersonalAccountCount
	bundle.Sources.Uznel = sourceOK
}

func (c *Collector) collectLibrary(ctx context.Context, bundle *models.MetricsBundle, org *models.Organization, month, year int) {
	if org.Library == nil || !org.Library.Active {
		bundle.Sources.Library = sourceDisabled
		return
	}

	start := c.now()
	fetched, err := c.library.Fetch(ctx, org.Library, month, year)
	metrics.RecordSourceFetch("library", time.Since(start), err)
	if err != nil {
		bundle.Errors = append(bundle.Errors, fmt.Sprintf("library: %v", err))
		bundle.Sources.Library = sourceError
		return
	}
	bundle.ElectronicResourceCount = fetched.ElectronicResourceCount
	bundle.ElectronicResourceUsage = fetched.ElectronicResourceUsage
	bundle.Sources.Library = sourceOK
}
