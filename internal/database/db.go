// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package database provides MongoDB data access for the rating pipeline.
// All aggregation components are stateless functions over snapshots
// queried here; the database owns every entity.
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/logging"
)

// Collection names.
const (
	colUsers          = "users"
	colOrganizations  = "organizations"
	colAssignments    = "rating_assignments"
	colWebsiteRatings = "website_ratings"
	colAutoRatings    = "auto_ratings"
	colUserRatings    = "user_ratings"
	colSurveyVotes    = "survey_votes"
	colPlausibleCache = "plausible_cache"
)

// DB wraps the Mongo client and database handle.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logging.Info().Str("database", cfg.Database).Msg("connected to MongoDB")
	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the compound unique indexes that back the data
// model's uniqueness invariants. Concurrent upserts racing on the same
// key resolve to last-write-wins on content; the index prevents
// duplicate rows.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		colAssignments: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "month", Value: 1}, {Key: "year", Value: 1}}},
		},
		colWebsiteRatings: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "organization_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}},
		},
		colAutoRatings: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: unique},
		},
		colUserRatings: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: unique},
		},
		colSurveyVotes: {
			{Keys: bson.D{{Key: "fingerprint", Value: 1}, {Key: "domain", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "domain", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colPlausibleCache: {
			{Keys: bson.D{{Key: "site_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: unique},
		},
	}

	for col, models := range specs {
		if _, err := d.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", col, err)
		}
	}
	return nil
}
