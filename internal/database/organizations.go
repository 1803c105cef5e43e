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

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// ListOrganizations returns all organizations sorted by name.
func (d *DB) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	cursor, err := d.db.Collection(colOrganizations).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	return orgs, nil
}

// GetOrganization returns one organization by id.
func (d *DB) GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	err := d.db.Collection(colOrganizations).FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// CreateOrganization inserts a new organization and fills in its id.
func (d *DB) CreateOrganization(ctx context.Context, org *models.Organization) error {
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	res, err := d.db.Collection(colOrganizations).InsertOne(ctx, org)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		org.ID = id
	}
	return nil
}

// UpdateOrganization replaces the mutable fields of an organization.
func (d *DB) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()
	res, err := d.db.Collection(colOrganizations).UpdateOne(ctx,
		bson.M{"_id": org.ID},
		bson.M{"$set": bson.M{
			"name":       org.Name,
			"url":        org.URL,
			"library":    org.Library,
			"updated_at": org.UpdatedAt,
		}})
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOrganization removes an organization by id.
func (d *DB) DeleteOrganization(ctx context.Context, id primitive.ObjectID) error {
	res, err := d.db.Collection(colOrganizations).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
