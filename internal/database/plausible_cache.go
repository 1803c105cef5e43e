// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bibliorank/bibliorank/internal/models"
)

// GetPlausibleCache returns the cached metrics entry for a site and
// period, or nil when absent. Freshness is the caller's concern.
func (d *DB) GetPlausibleCache(ctx context.Context, siteID string, month, year int) (*models.PlausibleCache, error) {
	var entry models.PlausibleCache
	err := d.db.Collection(colPlausibleCache).FindOne(ctx, bson.M{
		"site_id": siteID,
		"month":   month,
		"year":    year,
	}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plausible cache: %w", err)
	}
	return &entry, nil
}

// UpsertPlausibleCache writes a cache entry, atomically per
// (site, month, year).
func (d *DB) UpsertPlausibleCache(ctx context.Context, entry *models.PlausibleCache) error {
	filter := bson.M{
		"site_id": entry.SiteID,
		"month":   entry.Month,
		"year":    entry.Year,
	}
	update := bson.M{"$set": bson.M{
		"visitors":     entry.Visitors,
		"pageviews":    entry.Pageviews,
		"news_views":   entry.NewsViews,
		"last_updated": entry.LastUpdated,
	}}

	err := d.db.Collection(colPlausibleCache).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).
		Decode(entry)
	if err != nil {
		return fmt.Errorf("upsert plausible cache: %w", err)
	}
	return nil
}

// DeletePlausibleCache removes a cache entry. Deleting an absent entry
// is not an error; forced refreshes call this unconditionally.
func (d *DB) DeletePlausibleCache(ctx context.Context, siteID string, month, year int) error {
	_, err := d.db.Collection(colPlausibleCache).DeleteOne(ctx, bson.M{
		"site_id": siteID,
		"month":   month,
		"year":    year,
	})
	if err != nil {
		return fmt.Errorf("delete plausible cache: %w", err)
	}
	return nil
}
