// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package ranking

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/logging"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/scoring"
)

// Batch organization statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OrgResult is the per-organization outcome of a batch collection run.
type OrgResult struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Status string             `json:"status"`
	Score  int                `json:"score"`
	Errors []string           `json:"errors,omitempty"`
}

// BatchStats summarizes a batch collection run.
type BatchStats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchResult is the full outcome of a batch collection run. The batch
// always completes; callers inspect the per-organization statuses.
type BatchResult struct {
	Month         int         `json:"month"`
	Year          int         `json:"year"`
	Organizations []OrgResult `json:"organizations"`
	Stats         BatchStats  `json:"stats"`
}

// CollectAll refreshes the automated score of every organization from
// all three metric sources and stores the results. Organizations are
// processed one at a time to bound load on the external systems; a
// failure for one organization is recorded in its result and the run
// continues.
func (a *Assembler) CollectAll(ctx context.Context, month, year int, force bool) (*BatchResult, error) {
	return a.runBatch(ctx, month, year, force, models.AutoSourceComprehensive, a.collector.GetMetrics)
}

// FetchPlausible refreshes only the Plausible-backed metrics for every
// organization and stores the resulting partial scores.
func (a *Assembler) FetchPlausible(ctx context.Context, month, year int, force bool) (*BatchResult, error) {
	return a.runBatch(ctx, month, year, force, models.AutoSourcePlausible, a.collector.GetPlausibleMetrics)
}

type collectFunc func(ctx context.Context, org *models.Organization, month, year int, force bool) (models.MetricsBundle, error)

func (a *Assembler) runBatch(ctx context.Context, month, year int, force bool, source string, collect collectFunc) (*BatchResult, error) {
	orgs, err := a.store.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Month: month, Year: year}
	result.Stats.Total = len(orgs)

	for i := range orgs {
		org := &orgs[i]
		res := OrgResult{ID: org.ID, Name: org.Name, Status: StatusSuccess}

		bundle, err := collect(ctx, org, month, year, force)
		if err != nil {
			// Collection errors out only when the context is done;
			// abandon the remainder of the batch in that case.
			return nil, err
		}
		res.Errors = bundle.Errors

		res.Score = scoring.CalculatePoints(bundle)
		rating := &models.AutoRating{
			OrganizationID: org.ID,
			Month:          month,
			Year:           year,
			Metrics:        bundle,
			TotalScore:     res.Score,
			Source:         source,
		}
		if err := a.store.UpsertAutoRating(ctx, rating); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("auto rating persist failed")
			res.Status = StatusError
			res.Errors = append(res.Errors, err.Error())
		}

		if res.Status == StatusSuccess {
			result.Stats.Succeeded++
		} else {
			result.Stats.Failed++
		}
		result.Organizations = append(result.Organizations, res)
	}
	return result, nil
}
