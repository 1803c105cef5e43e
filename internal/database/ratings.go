// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bibliorank/bibliorank/internal/models"
)

// UpsertWebsiteRating writes an expert's checklist rating for one
// organization and period, atomically per (user, organization, month,
// year) via FindOneAndUpdate with upsert.
func (d *DB) UpsertWebsiteRating(ctx context.Context, r *models.WebsiteRating) error {
	now := time.Now()
	filter := bson.M{
		"user_id":         r.UserID,
		"organization_id": r.OrganizationID,
		"month":           r.Month,
		"year":            r.Year,
	}
	update := bson.M{
		"$set": bson.M{
			"categories":  r.Categories,
			"total_score": r.TotalScore,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	err := d.db.Collection(colWebsiteRatings).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).
		Decode(r)
	if err != nil {
		return fmt.Errorf("upsert website rating: %w", err)
	}
	return nil
}

// ListWebsiteRatings returns all expert ratings for an organization and
// period.
func (d *DB) ListWebsiteRatings(ctx context.Context, orgID primitive.ObjectID, month, year int) ([]models.WebsiteRating, error) {
	cursor, err := d.db.Collection(colWebsiteRatings).Find(ctx, bson.M{
		"organization_id": orgID,
		"month":           month,
		"year":            year,
	})
	if err != nil {
		return nil, fmt.Errorf("list website ratings: %w", err)
	}
	var out []models.WebsiteRating
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode website ratings: %w", err)
	}
	return out, nil
}

// GetAutoRating returns the automated rating for an organization and
// period, or nil when none has been stored.
func (d *DB) GetAutoRating(ctx context.Context, orgID primitive.ObjectID, month, year int) (*models.AutoRating, error) {
	var r models.AutoRating
	err := d.db.Collection(colAutoRatings).FindOne(ctx, bson.M{
		"organization_id": orgID,
		"month":           month,
		"year":            year,
	}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get auto rating: %w", err)
	}
	return &r, nil
}

// UpsertAutoRating writes the automated rating, atomically per
// (organization, month, year).
func (d *DB) UpsertAutoRating(ctx context.Context, r *models.AutoRating) error {
	filter := bson.M{
		"organization_id": r.OrganizationID,
		"month":           r.Month,
		"year":            r.Year,
	}
	update := bson.M{"$set": bson.M{
		"metrics":     r.Metrics,
		"total_score": r.TotalScore,
		"source":      r.Source,
		"updated_at":  time.Now(),
	}}

	err := d.db.Collection(colAutoRatings).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).
		Decode(r)
	if err != nil {
		return fmt.Errorf("upsert auto rating: %w", err)
	}
	return nil
}

// GetUserRating returns the admin override rating for an organization
// and period, or nil when none exists.
func (d *DB) GetUserRating(ctx context.Context, orgID primitive.ObjectID, month, year int) (*models.UserRating, error) {
	var r models.UserRating
	err := d.db.Collection(colUserRatings).FindOne(ctx, bson.M{
		"organization_id": orgID,
		"month":           month,
		"year":            year,
	}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user rating: %w", err)
	}
	return &r, nil
}

// UpsertUserRating writes the admin override, atomically per
// (organization, month, year).
func (d *DB) UpsertUserRating(ctx context.Context, r *models.UserRating) error {
	filter := bson.M{
		"organization_id": r.OrganizationID,
		"month":           r.Month,
		"year":            r.Year,
	}
	update := bson.M{"$set": bson.M{
		"metrics":     r.Metrics,
		"total_score": r.TotalScore,
		"updated_at":  time.Now(),
	}}

	err := d.db.Collection(colUserRatings).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).
		Decode(r)
	if err != nil {
		return fmt.Errorf("upsert user rating: %w", err)
	}
	return nil
}
