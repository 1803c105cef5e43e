// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/anticheat"
	"github.com/bibliorank/bibliorank/internal/logging"
	"github.com/bibliorank/bibliorank/internal/metrics"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/ranking"
	"github.com/bibliorank/bibliorank/internal/scoring"
)

// SubmitVote accepts a public survey vote. Validation failures are 400;
// anti-cheat rejections are 429 with the machine-readable reason. The
// checks run strictly in that order: a malformed vote never reaches the
// gate, and a gated vote is never stored.
func (h *Handler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req SubmitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	domain := scoring.NormalizeDomain(req.Domain)
	if domain == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "domain is required", nil)
		return
	}

	fingerprint := anticheat.Fingerprint(r)
	decision, err := h.gate.Check(r.Context(), fingerprint, domain)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "vote admission failed", err)
		return
	}
	if !decision.Allowed {
		metrics.RecordVoteRejected(string(decision.Reason))
		logging.Ctx(r.Context()).Info().
			Str("domain", domain).
			Str("fingerprint", fingerprint).
			Str("reason", string(decision.Reason)).
			Msg("survey vote rejected")

		details := map[string]interface{}{"reason": decision.Reason}
		if decision.Reason == anticheat.ReasonDomainCooldown {
			details["retry_after_minutes"] = decision.MinutesLeft
		}
		respondJSON(w, r, http.StatusTooManyRequests, &APIResponse{
			Status: "error",
			Error: &APIError{
				Code:    CodeTooManyRequests,
				Message: "vote limit reached for this domain",
				Details: details,
			},
		})
		return
	}

	vote := &models.SurveyVote{
		Domain:      domain,
		Responses:   models.SurveyResponses(req.Responses),
		Fingerprint: fingerprint,
		IPAddress:   r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	}
	if err := h.store.InsertSurveyVote(r.Context(), vote); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to store vote", err)
		return
	}

	metrics.RecordVoteAdmitted()
	logging.Ctx(r.Context()).Info().
		Str("domain", domain).
		Str("fingerprint", fingerprint).
		Int64("domain_daily", decision.DomainDaily).
		Int64("total_daily", decision.TotalDaily).
		Msg("survey vote admitted")

	respondData(w, r, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      vote.ID.Hex(),
	})
}

// SurveyStats returns public vote statistics for one domain, optionally
// bounded by startDate/endDate (YYYY-MM-DD).
func (h *Handler) SurveyStats(w http.ResponseWriter, r *http.Request) {
	domain := scoring.NormalizeDomain(chi.URLParam(r, "domain"))
	if domain == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "domain is required", nil)
		return
	}

	from, ok := parseDateParam(r, "startDate")
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "startDate must be YYYY-MM-DD", nil)
		return
	}
	to, ok := parseDateParam(r, "endDate")
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "endDate must be YYYY-MM-DD", nil)
		return
	}
	if !to.IsZero() {
		// Inclusive end date.
		to = to.AddDate(0, 0, 1)
	}

	votes, err := h.store.ListVotesByDomain(r.Context(), domain, from, to)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to load votes", err)
		return
	}

	respondData(w, r, http.StatusOK, map[string]interface{}{
		"domain": domain,
		"stats":  scoring.ComputeDomainStats(votes),
	})
}

// PublicRatings returns the public leaderboard for a period.
func (h *Handler) PublicRatings(w http.ResponseWriter, r *http.Request) {
	month, year := periodFromQuery(r)
	overall, err := h.assembler.Overall(r.Context(), month, year, ranking.ViewPublic)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to assemble ratings", err)
		return
	}
	respondData(w, r, http.StatusOK, overall)
}

// PublicRatingDetail returns one organization's scores with the
// per-expert breakdown.
func (h *Handler) PublicRatingDetail(w http.ResponseWriter, r *http.Request) {
	orgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "organizationID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "invalid organization id", nil)
		return
	}

	month, year := periodFromQuery(r)
	entry, err := h.assembler.Detail(r.Context(), orgID, month, year, ranking.ViewPublic)
	if err != nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "organization not found", nil)
		return
	}
	respondData(w, r, http.StatusOK, entry)
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. The
// second return is false when the value is present but malformed.
func parseDateParam(r *http.Request, key string) (time.Time, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
