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

	"github.com/bibliorank/bibliorank/internal/models"
)

// Assignment creation failures with dedicated client messaging.
var (
	// ErrAssignmentExists means the expert already holds an assignment
	// for the period.
	ErrAssignmentExists = errors.New("expert already has an assignment for this period")

	// ErrExpertPanelFull means three distinct experts already hold
	// assignments for the period.
	ErrExpertPanelFull = errors.New("expert panel for this period is full")
)

// maxExpertsPerPeriod caps distinct experts holding assignments for one
// (month, year). Enforced at creation time, not by a schema constraint.
const maxExpertsPerPeriod = 3

// CreateAssignment inserts an expert's assignment for a period after
// checking the one-per-expert and three-experts-per-period invariants.
// The checks and the insert are not transactional; the unique index on
// (user_id, month, year) backstops the first invariant under races.
func (d *DB) CreateAssignment(ctx context.Context, a *models.RatingAssignment) error {
	col := d.db.Collection(colAssignments)

	count, err := col.CountDocuments(ctx, bson.M{"user_id": a.UserID, "month": a.Month, "year": a.Year})
	if err != nil {
		return fmt.Errorf("count existing assignments: %w", err)
	}
	if count > 0 {
		return ErrAssignmentExists
	}

	experts, err := col.Distinct(ctx, "user_id", bson.M{"month": a.Month, "year": a.Year})
	if err != nil {
		return fmt.Errorf("count period experts: %w", err)
	}
	if len(experts) >= maxExpertsPerPeriod {
		return ErrExpertPanelFull
	}

	a.CreatedAt = time.Now()
	res, err := col.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAssignmentExists
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}

// GetAssignment returns the expert's assignment for a period, or nil.
func (d *DB) GetAssignment(ctx context.Context, userID primitive.ObjectID, month, year int) (*models.RatingAssignment, error) {
	var a models.RatingAssignment
	err := d.db.Collection(colAssignments).
		FindOne(ctx, bson.M{"user_id": userID, "month": month, "year": year}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

// ListAssignments returns all assignments for a period.
func (d *DB) ListAssignments(ctx context.Context, month, year int) ([]models.RatingAssignment, error) {
	cursor, err := d.db.Collection(colAssignments).Find(ctx, bson.M{"month": month, "year": year})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	var out []models.RatingAssignment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	return out, nil
}
