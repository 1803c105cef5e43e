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
	"github.com/bibliorank/bibliorank/internal/scoring"
)

// InsertSurveyVote stores a public survey vote. Votes are append-only;
// nothing in the system updates or deletes them.
func (d *DB) InsertSurveyVote(ctx context.Context, v *models.SurveyVote) error {
	v.CreatedAt = time.Now()
	res, err := d.db.Collection(colSurveyVotes).InsertOne(ctx, v)
	if err != nil {
		return fmt.Errorf("insert survey vote: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		v.ID = id
	}
	return nil
}

// domainFilter matches votes stored under either the bare normalized
// domain or its www-prefixed form. Older votes predate normalization at
// write time, so reads tolerate both spellings.
func domainFilter(domain string) bson.M {
	variants := scoring.DomainVariants(domain)
	return bson.M{"$in": variants}
}

// LastVoteAt returns the creation time of the fingerprint's most recent
// vote for the domain at or after since, or nil when there is none.
func (d *DB) LastVoteAt(ctx context.Context, fingerprint, domain string, since time.Time) (*time.Time, error) {
	var vote models.SurveyVote
	err := d.db.Collection(colSurveyVotes).FindOne(ctx,
		bson.M{
			"fingerprint": fingerprint,
			"domain":      domainFilter(domain),
			"created_at":  bson.M{"$gte": since},
		},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&vote)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last vote: %w", err)
	}
	return &vote.CreatedAt, nil
}

// CountDomainVotes counts the fingerprint's votes for the domain at or
// after since.
func (d *DB) CountDomainVotes(ctx context.Context, fingerprint, domain string, since time.Time) (int64, error) {
	count, err := d.db.Collection(colSurveyVotes).CountDocuments(ctx, bson.M{
		"fingerprint": fingerprint,
		"domain":      domainFilter(domain),
		"created_at":  bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("count domain votes: %w", err)
	}
	return count, nil
}

// CountTotalVotes counts the fingerprint's votes across all domains at
// or after since.
func (d *DB) CountTotalVotes(ctx context.Context, fingerprint string, since time.Time) (int64, error) {
	count, err := d.db.Collection(colSurveyVotes).CountDocuments(ctx, bson.M{
		"fingerprint": fingerprint,
		"created_at":  bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("count total votes: %w", err)
	}
	return count, nil
}

// ListVotesByDomain returns all votes for a domain, optionally bounded
// by an inclusive-from, exclusive-to time range. Zero bounds are
// omitted from the query.
func (d *DB) ListVotesByDomain(ctx context.Context, domain string, from, to time.Time) ([]models.SurveyVote, error) {
	filter := bson.M{"domain": domainFilter(domain)}
	created := bson.M{}
	if !from.IsZero() {
		created["$gte"] = from
	}
	if !to.IsZero() {
		created["$lt"] = to
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	cursor, err := d.db.Collection(colSurveyVotes).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list votes by domain: %w", err)
	}
	var out []models.SurveyVote
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode votes: %w", err)
	}
	return out, nil
}

// ListVotesForMonth returns a domain's votes created within the given
// calendar month, in the server's local time zone.
func (d *DB) ListVotesForMonth(ctx context.Context, domain string, month, year int) ([]models.SurveyVote, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)
	return d.ListVotesByDomain(ctx, domain, from, to)
}
