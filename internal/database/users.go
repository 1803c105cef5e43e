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
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bibliorank/bibliorank/internal/models"
)

// CreateUser inserts a new operator account.
func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now()
	if _, err := d.db.Collection(colUsers).InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByUsername returns the user, or nil when no such account exists.
func (d *DB) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := d.db.Collection(colUsers).FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
