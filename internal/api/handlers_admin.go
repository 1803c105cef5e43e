// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/database"
	"github.com/bibliorank/bibliorank/internal/metrics"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/ranking"
)

// AdminOverall returns the leaderboard in the admin view: scaled-52
// expert scores, provenance fields, and fully-rated-first ordering.
func (h *Handler) AdminOverall(w http.ResponseWriter, r *http.Request) {
	month, year := periodFromQuery(r)
	overall, err := h.assembler.Overall(r.Context(), month, year, ranking.ViewAdmin)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to assemble ratings", err)
		return
	}
	respondData(w, r, http.StatusOK, overall)
}

// FetchPlausibleData refreshes Plausible metrics for all organizations.
// Always 200; per-organization outcomes are in the payload.
func (h *Handler) FetchPlausibleData(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBatchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.assembler.FetchPlausible(r.Context(), req.Month, req.Year, req.Force)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "batch collection failed", err)
		return
	}
	metrics.RecordBatchRun("fetch_plausible", result.Stats.Succeeded, result.Stats.Failed)
	respondData(w, r, http.StatusOK, result)
}

// CollectAllData refreshes all metric sources for all organizations.
// Always 200; per-organization outcomes are in the payload.
func (h *Handler) CollectAllData(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBatchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.assembler.CollectAll(r.Context(), req.Month, req.Year, req.Force)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "batch collection failed", err)
		return
	}
	metrics.RecordBatchRun("collect_all", result.Stats.Succeeded, result.Stats.Failed)
	respondData(w, r, http.StatusOK, result)
}

func (h *Handler) decodeBatchRequest(w http.ResponseWriter, r *http.Request) (*BatchCollectRequest, bool) {
	var req BatchCollectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return nil, false
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return nil, false
	}
	return &req, true
}

// CreateAssignment gives an expert their organizations for a period.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req AssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(req.UserID)
	orgIDs := make([]primitive.ObjectID, 0, len(req.OrganizationIDs))
	for _, raw := range req.OrganizationIDs {
		id, _ := primitive.ObjectIDFromHex(raw)
		orgIDs = append(orgIDs, id)
	}

	assignment := &models.RatingAssignment{
		UserID:          userID,
		OrganizationIDs: orgIDs,
		Month:           req.Month,
		Year:            req.Year,
	}
	err := h.store.CreateAssignment(r.Context(), assignment)
	switch {
	case errors.Is(err, database.ErrAssignmentExists):
		respondError(w, r, http.StatusConflict, CodeConflict, err.Error(), nil)
		return
	case errors.Is(err, database.ErrExpertPanelFull):
		respondError(w, r, http.StatusConflict, CodeConflict, err.Error(), nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to create assignment", err)
		return
	}
	respondData(w, r, http.StatusCreated, assignment)
}

// ListAssignments returns all assignments for a period.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	month, year := periodFromQuery(r)
	assignments, err := h.store.ListAssignments(r.Context(), month, year)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to list assignments", err)
		return
	}
	respondData(w, r, http.StatusOK, assignments)
}

// SubmitWebsiteRating stores the calling expert's checklist rating for
// one organization. The organization must be in the expert's assignment
// for the period.
func (h *Handler) SubmitWebsiteRating(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "authentication required", nil)
		return
	}
	expertID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid session subject", nil)
		return
	}

	var req WebsiteRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	orgID, _ := primitive.ObjectIDFromHex(req.OrganizationID)

	assignment, err := h.store.GetAssignment(r.Context(), expertID, req.Month, req.Year)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to check assignment", err)
		return
	}
	if assignment == nil || !assignmentCovers(assignment, orgID) {
		respondError(w, r, http.StatusForbidden, CodeForbidden, "organization is not in your assignment for this period", nil)
		return
	}

	categories := make([]models.ChecklistCategory, 0, len(req.Categories))
	for _, cat := range req.Categories {
		categories = append(categories, models.ChecklistCategory{Key: cat.Key, Answers: cat.Answers})
	}

	rating := &models.WebsiteRating{
		UserID:         expertID,
		OrganizationID: orgID,
		Month:          req.Month,
		Year:           req.Year,
		Categories:     categories,
		TotalScore:     models.ChecklistTotal(categories),
	}
	if err := h.store.UpsertWebsiteRating(r.Context(), rating); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to store rating", err)
		return
	}
	respondData(w, r, http.StatusOK, rating)
}

// SetUserRating stores the admin override for an organization and
// period. The stored total is the sum of the three sub-scores; a zero
// total leaves survey aggregation in effect.
func (h *Handler) SetUserRating(w http.ResponseWriter, r *http.Request) {
	var req UserRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	orgID, _ := primitive.ObjectIDFromHex(req.OrganizationID)

	rating := &models.UserRating{
		OrganizationID: orgID,
		Month:          req.Month,
		Year:           req.Year,
		Metrics: models.UserRatingMetrics{
			Satisfaction:  req.Satisfaction,
			Accessibility: req.Accessibility,
			Feedback:      req.Feedback,
		},
		TotalScore: req.Satisfaction + req.Accessibility + req.Feedback,
	}
	if err := h.store.UpsertUserRating(r.Context(), rating); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to store override", err)
		return
	}
	respondData(w, r, http.StatusOK, rating)
}

func assignmentCovers(a *models.RatingAssignment, orgID primitive.ObjectID) bool {
	for _, id := range a.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}
