// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package models defines the MongoDB-backed domain entities shared across
// the rating pipeline: organizations, expert checklist ratings, automated
// metric ratings, admin overrides, survey votes, and the Plausible cache.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User levels form a strict hierarchy; a level grants everything below it.
const (
	LevelUser      = 0
	LevelExpert    = 1
	LevelModerator = 2
	LevelAdmin     = 3
	LevelRais      = 5
)

// User is an authenticated operator of the admin backend.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Level        int                `bson:"level" json:"level"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// LibraryIntegration configures an organization's library management
// system endpoint, used to collect electronic resource metrics.
type LibraryIntegration struct {
	LocationCode string `bson:"location_code" json:"location_code"`
	APIEndpoint  string `bson:"api_endpoint" json:"api_endpoint"`
	Active       bool   `bson:"active" json:"active"`
}

// Organization is a library website being rated.
type Organization struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	URL       string              `bson:"url" json:"url"`
	Library   *LibraryIntegration `bson:"library,omitempty" json:"library,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// RatingAssignment gives one expert a set of organizations to rate for a
// period. At most one assignment per (user, month, year); at most three
// distinct experts may hold assignments for any (month, year).
type RatingAssignment struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID   `bson:"user_id" json:"user_id"`
	OrganizationIDs []primitive.ObjectID `bson:"organization_ids" json:"organization_ids"`
	Month           int                  `bson:"month" json:"month"`
	Year            int                  `bson:"year" json:"year"`
	Completed       bool                 `bson:"completed" json:"completed"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
}

// ChecklistCategory is one of the 12 fixed checklist categories with its
// per-item boolean answers.
type ChecklistCategory struct {
	Key     string `bson:"key" json:"key"`
	Answers []bool `bson:"answers" json:"answers"`
}

// WebsiteRating is one expert's checklist rating of one organization for a
// period. TotalScore is the count of true answers (max 52). Unique per
// (user, organization, month, year).
type WebsiteRating struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user_id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	Month          int                 `bson:"month" json:"month"`
	Year           int                 `bson:"year" json:"year"`
	Categories     []ChecklistCategory `bson:"categories" json:"categories"`
	TotalScore     int                 `bson:"total_score" json:"total_score"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// ChecklistTotal derives the rating's total score from its answers.
func ChecklistTotal(categories []ChecklistCategory) int {
	total := 0
	for _, cat := range categories {
		for _, answer := range cat.Answers {
			if answer {
				total++
			}
		}
	}
	return total
}

// AutoRating source provenance tags.
const (
	AutoSourceManual        = "manual"
	AutoSourcePlausible     = "plausible"
	AutoSourceComprehensive = "comprehensive"
	AutoSourceError         = "error"
	AutoSourceNone          = "none"
)

// AutoRating is the automated metrics score for an organization and period.
// Unique per (organization, month, year); upserted.
type AutoRating struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Month          int                `bson:"month" json:"month"`
	Year           int                `bson:"year" json:"year"`
	Metrics        MetricsBundle      `bson:"metrics" json:"metrics"`
	TotalScore     int                `bson:"total_score" json:"total_score"`
	Source         string             `bson:"source" json:"source"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserRatingMetrics are the three admin-entered sub-scores.
type UserRatingMetrics struct {
	Satisfaction  float64 `bson:"satisfaction" json:"satisfaction"`
	Accessibility float64 `bson:"accessibility" json:"accessibility"`
	Feedback      float64 `bson:"feedback" json:"feedback"`
}

// UserRating is an admin override of the survey-derived user score for an
// organization and period. When present with TotalScore > 0 it supersedes
// survey aggregation entirely. Unique per (organization, month, year).
type UserRating struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Month          int                `bson:"month" json:"month"`
	Year           int                `bson:"year" json:"year"`
	Metrics        UserRatingMetrics  `bson:"metrics" json:"metrics"`
	TotalScore     float64            `bson:"total_score" json:"total_score"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// SurveyResponses are the three 1-5 ratings of a public survey vote.
type SurveyResponses struct {
	Usability int `bson:"usability" json:"usability"`
	Design    int `bson:"design" json:"design"`
	Search    int `bson:"search" json:"search"`
}

// SurveyVote is one public visitor vote. Votes are immutable once created;
// there is no update or delete path. The domain is stored as submitted and
// matched through scoring.NormalizeDomain.
type SurveyVote struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Domain      string             `bson:"domain" json:"domain"`
	Responses   SurveyResponses    `bson:"responses" json:"responses"`
	Fingerprint string             `bson:"fingerprint" json:"fingerprint"`
	IPAddress   string             `bson:"ip_address" json:"-"`
	UserAgent   string             `bson:"user_agent" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// PlausibleCache is a cached Plausible metrics result for a site and
// period. Unique per (site, month, year); freshness is checked at read
// time against the configured TTL.
type PlausibleCache struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID      string             `bson:"site_id" json:"site_id"`
	Month       int                `bson:"month" json:"month"`
	Year        int                `bson:"year" json:"year"`
	Visitors    int                `bson:"visitors" json:"visitors"`
	Pageviews   int                `bson:"pageviews" json:"pageviews"`
	NewsViews   int                `bson:"news_views" json:"news_views"`
	LastUpdated time.Time          `bson:"last_updated" json:"last_updated"`
}
