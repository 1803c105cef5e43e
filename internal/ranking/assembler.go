// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package ranking combines the three rating signals, expert checklist
// scores, automated metric scores, and public survey scores, into the
// monthly leaderboard.
package ranking

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/logging"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/scoring"
	"github.com/bibliorank/bibliorank/internal/sources"
)

// View selects the expert-score formula and the sort order.
type View string

const (
	// ViewPublic divides the expert total by the panel size and sorts
	// by total score alone.
	ViewPublic View = "public"

	// ViewAdmin rescales the expert average to the 52-point display
	// scale and sorts fully rated organizations first.
	ViewAdmin View = "admin"
)

// User-score provenance values.
const (
	UserSourceAdmin     = "admin"
	UserSourceSorovnoma = "sorovnoma"
	UserSourceNone      = "none"
)

// Store is the persistence surface the assembler reads and, for the
// automated-score cache, writes.
type Store interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	ListWebsiteRatings(ctx context.Context, orgID primitive.ObjectID, month, year int) ([]models.WebsiteRating, error)
	GetAutoRating(ctx context.Context, orgID primitive.ObjectID, month, year int) (*models.AutoRating, error)
	UpsertAutoRating(ctx context.Context, r *models.AutoRating) error
	GetUserRating(ctx context.Context, orgID primitive.ObjectID, month, year int) (*models.UserRating, error)
	ListVotesForMonth(ctx context.Context, domain string, month, year int) ([]models.SurveyVote, error)
}

// Scores groups the three signal scores and their sum for one
// organization and period.
type Scores struct {
	Expert    int     `json:"expert"`
	Automatic int     `json:"automatic"`
	User      float64 `json:"user"`
	Total     float64 `json:"total"`
}

// ExpertBreakdown is one expert's contribution in the detail view.
type ExpertBreakdown struct {
	UserID     primitive.ObjectID `json:"user_id"`
	TotalScore int                `json:"total_score"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Entry is one organization's row in the leaderboard. Rank is assigned
// only in the public view; the provenance fields and the survey vote
// count are populated only in the admin view.
type Entry struct {
	ID              primitive.ObjectID `json:"id"`
	Name            string             `json:"name"`
	URL             string             `json:"url"`
	Scores          Scores             `json:"scores"`
	Trend           int                `json:"trend"`
	Rank            int                `json:"rank,omitempty"`
	FullyRated      bool               `json:"fullyRated"`
	UserScoreSource string             `json:"userScoreSource,omitempty"`
	AutoScoreSource string             `json:"autoScoreSource,omitempty"`
	SorovnomaCount  int                `json:"sorovnomaCount,omitempty"`
	LastUpdated     time.Time          `json:"lastUpdated"`
	Experts         []ExpertBreakdown  `json:"experts,omitempty"`
}

// Overall is the assembled leaderboard for a period.
type Overall struct {
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	Organizations []Entry `json:"organizations"`
}

// Assembler builds the leaderboard from the store and the metrics
// collector.
type Assembler struct {
	store     Store
	collector sources.MetricsCollector
	now       func() time.Time
}

// NewAssembler constructs an Assembler.
func NewAssembler(store Store, collector sources.MetricsCollector) *Assembler {
	return &Assembler{store: store, collector: collector, now: time.Now}
}

// WithClock overrides the assembler's clock. Test hook.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Overall assembles the ranked leaderboard for a period. Organizations
// are scored sequentially; a failing organization scores what it can
// and the batch continues. The public view sorts by total score and
// assigns 1-based ranks; the admin view sorts fully rated
// organizations first, then by total score.
func (a *Assembler) Overall(ctx context.Context, month, year int, view View) (*Overall, error) {
	orgs, err := a.store.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(orgs))
	for i := range orgs {
		entries = append(entries, a.scoreOrganization(ctx, &orgs[i], month, year, view, false))
	}

	switch view {
	case ViewAdmin:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].FullyRated != entries[j].FullyRated {
				return entries[i].FullyRated
			}
			return entries[i].Scores.Total > entries[j].Scores.Total
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Scores.Total > entries[j].Scores.Total
		})
		for i := range entries {
			entries[i].Rank = i + 1
		}
	}

	return &Overall{Month: month, Year: year, Organizations: entries}, nil
}

// Detail scores a single organization for a period, including the
// per-expert breakdown.
func (a *Assembler) Detail(ctx context.Context, orgID primitive.ObjectID, month, year int, view View) (*Entry, error) {
	org, err := a.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	entry := a.scoreOrganization(ctx, org, month, year, view, true)
	return &entry, nil
}

func (a *Assembler) scoreOrganization(ctx context.Context, org *models.Organization, month, year int, view View, detail bool) Entry {
	entry := Entry{
		ID:          org.ID,
		Name:        org.Name,
		URL:         org.URL,
		LastUpdated: a.now(),
	}

	totals := a.expertTotals(ctx, org, month, year, detail, &entry)
	entry.Scores.Expert = expertScore(view, totals)
	entry.FullyRated = len(totals) >= expertPanelSize

	prevMonth, prevYear := scoring.PreviousPeriod(month, year)
	prevTotals := a.expertTotals(ctx, org, prevMonth, prevYear, false, nil)
	entry.Trend = entry.Scores.Expert - expertScore(view, prevTotals)

	entry.Scores.Automatic, entry.AutoScoreSource = a.autoScore(ctx, org, month, year)
	entry.Scores.User, entry.UserScoreSource, entry.SorovnomaCount = a.userScore(ctx, org, month, year)

	entry.Scores.Total = float64(entry.Scores.Expert) + float64(entry.Scores.Automatic) + entry.Scores.User
	if view != ViewAdmin {
		entry.UserScoreSource = ""
		entry.AutoScoreSource = ""
		entry.SorovnomaCount = 0
	}
	return entry
}

// expertPanelSize is the number of experts expected to rate each
// organization per period.
const expertPanelSize = 3

func expertScore(view View, totals []int) int {
	if view == ViewAdmin {
		return scoring.ExpertScoreScaled52(totals)
	}
	return scoring.ExpertScoreThirds(totals)
}

func (a *Assembler) expertTotals(ctx context.Context, org *models.Organization, month, year int, detail bool, entry *Entry) []int {
	ratings, err := a.store.ListWebsiteRatings(ctx, org.ID, month, year)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("expert ratings query failed")
		return nil
	}
	totals := make([]int, 0, len(ratings))
	for _, r := range ratings {
		totals = append(totals, r.TotalScore)
		if detail && entry != nil {
			entry.Experts = append(entry.Experts, ExpertBreakdown{
				UserID:     r.UserID,
				TotalScore: r.TotalScore,
				UpdatedAt:  r.UpdatedAt,
			})
		}
	}
	return totals
}

// autoScore returns the stored automated score, or computes it live and
// caches the result. The cache write has its own error boundary: a
// failed persist is logged and the computed score is still served.
func (a *Assembler) autoScore(ctx context.Context, org *models.Organization, month, year int) (int, string) {
	stored, err := a.store.GetAutoRating(ctx, org.ID, month, year)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("auto rating query failed")
	}
	if stored != nil {
		return stored.TotalScore, stored.Source
	}

	bundle, err := a.collector.GetMetrics(ctx, org, month, year, false)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("metric collection failed")
		return 0, models.AutoSourceError
	}

	score := scoring.CalculatePoints(bundle)
	rating := &models.AutoRating{
		OrganizationID: org.ID,
		Month:          month,
		Year:           year,
		Metrics:        bundle,
		TotalScore:     score,
		Source:         models.AutoSourceComprehensive,
	}
	if err := a.store.UpsertAutoRating(ctx, rating); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("auto rating persist failed")
	}
	return score, models.AutoSourceComprehensive
}

// userScore resolves the user-signal score. An admin override with a
// positive total supersedes the survey entirely; the survey average is
// not computed in that branch.
func (a *Assembler) userScore(ctx context.Context, org *models.Organization, month, year int) (float64, string, int) {
	override, err := a.store.GetUserRating(ctx, org.ID, month, year)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("user rating query failed")
	}
	if override != nil && override.TotalScore > 0 {
		return override.TotalScore, UserSourceAdmin, 0
	}

	domain := scoring.NormalizeDomain(org.URL)
	votes, err := a.store.ListVotesForMonth(ctx, domain, month, year)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("organization", org.Name).Msg("survey votes query failed")
		return 0, UserSourceNone, 0
	}
	if len(votes) == 0 {
		return 0, UserSourceNone, 0
	}
	return scoring.MonthlySurveyScore(votes), UserSourceSorovnoma, len(votes)
}
