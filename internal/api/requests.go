// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SurveyResponsesBody carries the three 1-5 ratings of a vote.
type SurveyResponsesBody struct {
	Usability int `json:"usability" validate:"required,min=1,max=5"`
	Design    int `json:"design" validate:"required,min=1,max=5"`
	Search    int `json:"search" validate:"required,min=1,max=5"`
}

// SubmitVoteRequest is the public survey submission payload. The domain
// is free-form; it is normalized before any matching or storage.
type SubmitVoteRequest struct {
	Domain    string              `json:"domain" validate:"required,min=3,max=255"`
	Responses SurveyResponsesBody `json:"responses" validate:"required"`
	Timestamp string              `json:"timestamp" validate:"omitempty"`
}

// OrganizationRequest creates or updates an organization.
type OrganizationRequest struct {
	Name    string                     `json:"name" validate:"required,min=2,max=255"`
	URL     string                     `json:"url" validate:"required,url"`
	Library *LibraryIntegrationRequest `json:"library" validate:"omitempty"`
}

// LibraryIntegrationRequest configures an organization's library
// management system endpoint.
type LibraryIntegrationRequest struct {
	LocationCode string `json:"location_code" validate:"required,min=1,max=32"`
	APIEndpoint  string `json:"api_endpoint" validate:"required,url"`
	Active       bool   `json:"active"`
}

// AssignmentRequest gives an expert a set of organizations for a period.
type AssignmentRequest struct {
	UserID          string   `json:"user_id" validate:"required,objectid"`
	OrganizationIDs []string `json:"organization_ids" validate:"required,min=1,dive,objectid"`
	Month           int      `json:"month" validate:"required,min=1,max=12"`
	Year            int      `json:"year" validate:"required,min=2020,max=2100"`
}

// ChecklistCategoryBody is one checklist category's answers.
type ChecklistCategoryBody struct {
	Key     string `json:"key" validate:"required,min=1,max=64"`
	Answers []bool `json:"answers" validate:"required,min=1"`
}

// WebsiteRatingRequest submits an expert's checklist rating.
type WebsiteRatingRequest struct {
	OrganizationID string                  `json:"organization_id" validate:"required,objectid"`
	Month          int                     `json:"month" validate:"required,min=1,max=12"`
	Year           int                     `json:"year" validate:"required,min=2020,max=2100"`
	Categories     []ChecklistCategoryBody `json:"categories" validate:"required,min=1,max=12,dive"`
}

// UserRatingRequest sets the admin override for an organization and
// period. A zero total clears the override's effect.
type UserRatingRequest struct {
	OrganizationID string  `json:"organization_id" validate:"required,objectid"`
	Month          int     `json:"month" validate:"required,min=1,max=12"`
	Year           int     `json:"year" validate:"required,min=2020,max=2100"`
	Satisfaction   float64 `json:"satisfaction" validate:"min=0,max=20"`
	Accessibility  float64 `json:"accessibility" validate:"min=0,max=20"`
	Feedback       float64 `json:"feedback" validate:"min=0,max=20"`
}

// BatchCollectRequest triggers a metric collection fan-out.
type BatchCollectRequest struct {
	Month int  `json:"month" validate:"required,min=1,max=12"`
	Year  int  `json:"year" validate:"required,min=2020,max=2100"`
	Force bool `json:"force"`
}
