// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/database"
	"github.com/bibliorank/bibliorank/internal/models"
)

// ListOrganizations returns all organizations.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.store.ListOrganizations(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to list organizations", err)
		return
	}
	respondData(w, r, http.StatusOK, orgs)
}

// GetOrganization returns one organization.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "organizationID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "invalid organization id", nil)
		return
	}

	org, err := h.store.GetOrganization(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, CodeNotFound, "organization not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to load organization", err)
		return
	}
	respondData(w, r, http.StatusOK, org)
}

// CreateOrganization creates an organization.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req OrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	org := organizationFromRequest(&req)
	if err := h.store.CreateOrganization(r.Context(), org); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to create organization", err)
		return
	}
	respondData(w, r, http.StatusCreated, org)
}

// UpdateOrganization replaces an organization's mutable fields.
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "organizationID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "invalid organization id", nil)
		return
	}

	var req OrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	org := organizationFromRequest(&req)
	org.ID = id
	if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, CodeNotFound, "organization not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to update organization", err)
		return
	}
	respondData(w, r, http.StatusOK, org)
}

// DeleteOrganization removes an organization.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "organizationID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "invalid organization id", nil)
		return
	}

	if err := h.store.DeleteOrganization(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, CodeNotFound, "organization not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to delete organization", err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]interface{}{"deleted": true})
}

func organizationFromRequest(req *OrganizationRequest) *models.Organization {
	org := &models.Organization{
		Name: req.Name,
		URL:  req.URL,
	}
	if req.Library != nil {
		org.Library = &models.LibraryIntegration{
			LocationCode: req.Library.LocationCode,
			APIEndpoint:  req.Library.APIEndpoint,
			Active:       req.Library.Active,
		}
	}
	return org
}
