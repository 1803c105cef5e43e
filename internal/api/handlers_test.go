// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/anticheat"
	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/database"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/ranking"
	"github.com/bibliorank/bibliorank/internal/scoring"
	"github.com/bibliorank/bibliorank/internal/sources"
)

// fakeStore is an in-memory Store and anticheat.VoteCounter used by the
// handler tests.
type fakeStore struct {
	users       map[string]*models.User
	orgs        []models.Organization
	assignments []models.RatingAssignment
	ratings     map[string][]models.WebsiteRating
	auto        map[string]*models.AutoRating
	overrides   map[string]*models.UserRating
	votes       []models.SurveyVote

	websiteRatings []*models.WebsiteRating
	userRatings    []*models.UserRating
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*models.User{},
		ratings:   map[string][]models.WebsiteRating{},
		auto:      map[string]*models.AutoRating{},
		overrides: map[string]*models.UserRating{},
	}
}

func key(id primitive.ObjectID, month, year int) string {
	return fmt.Sprintf("%s/%d/%d", id.Hex(), month, year)
}

func (s *fakeStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.users[username], nil
}

func (s *fakeStore) ListOrganizations(context.Context) ([]models.Organization, error) {
	return s.orgs, nil
}

func (s *fakeStore) GetOrganization(_ context.Context, id primitive.ObjectID) (*models.Organization, error) {
	for i := range s.orgs {
		if s.orgs[i].ID == id {
			return &s.orgs[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) CreateOrganization(_ context.Context, org *models.Organization) error {
	org.ID = primitive.NewObjectID()
	s.orgs = append(s.orgs, *org)
	return nil
}

func (s *fakeStore) UpdateOrganization(_ context.Context, org *models.Organization) error {
	for i := range s.orgs {
		if s.orgs[i].ID == org.ID {
			s.orgs[i] = *org
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) DeleteOrganization(_ context.Context, id primitive.ObjectID) error {
	for i := range s.orgs {
		if s.orgs[i].ID == id {
			s.orgs = append(s.orgs[:i], s.orgs[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) CreateAssignment(_ context.Context, a *models.RatingAssignment) error {
	experts := map[string]struct{}{}
	for _, existing := range s.assignments {
		if existing.Month != a.Month || existing.Year != a.Year {
			continue
		}
		if existing.UserID == a.UserID {
			return database.ErrAssignmentExists
		}
		experts[existing.UserID.Hex()] = struct{}{}
	}
	if len(experts) >= 3 {
		return database.ErrExpertPanelFull
	}
	a.ID = primitive.NewObjectID()
	s.assignments = append(s.assignments, *a)
	return nil
}

func (s *fakeStore) GetAssignment(_ context.Context, userID primitive.ObjectID, month, year int) (*models.RatingAssignment, error) {
	for i := range s.assignments {
		a := &s.assignments[i]
		if a.UserID == userID && a.Month == month && a.Year == year {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListAssignments(_ context.Context, month, year int) ([]models.RatingAssignment, error) {
	var out []models.RatingAssignment
	for _, a := range s.assignments {
		if a.Month == month && a.Year == year {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) ListWebsiteRatings(_ context.Context, orgID primitive.ObjectID, month, year int) ([]models.WebsiteRating, error) {
	return s.ratings[key(orgID, month, year)], nil
}

func (s *fakeStore) UpsertWebsiteRating(_ context.Context, r *models.WebsiteRating) error {
	s.websiteRatings = append(s.websiteRatings, r)
	k := key(r.OrganizationID, r.Month, r.Year)
	s.ratings[k] = append(s.ratings[k], *r)
	return nil
}

func (s *fakeStore) GetAutoRating(_ context.Context, orgID primitive.ObjectID, month, year int) (*models.AutoRating, error) {
	return s.auto[key(orgID, month, year)], nil
}

func (s *fakeStore) UpsertAutoRating(_ context.Context, r *models.AutoRating) error {
	s.auto[key(r.OrganizationID, r.Month, r.Year)] = r
	return nil
}

func (s *fakeStore) GetUserRating(_ context.Context, orgID primitive.ObjectID, month, year int) (*models.UserRating, error) {
	return s.overrides[key(orgID, month, year)], nil
}

func (s *fakeStore) UpsertUserRating(_ context.Context, r *models.UserRating) error {
	s.userRatings = append(s.userRatings, r)
	s.overrides[key(r.OrganizationID, r.Month, r.Year)] = r
	return nil
}

func (s *fakeStore) InsertSurveyVote(_ context.Context, v *models.SurveyVote) error {
	v.ID = primitive.NewObjectID()
	v.CreatedAt = time.Now()
	s.votes = append(s.votes, *v)
	return nil
}

func (s *fakeStore) ListVotesByDomain(_ context.Context, domain string, from, to time.Time) ([]models.SurveyVote, error) {
	var out []models.SurveyVote
	for _, v := range s.votes {
		if scoring.NormalizeDomain(v.Domain) != domain {
			continue
		}
		if !from.IsZero() && v.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !v.CreatedAt.Before(to) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeStore) ListVotesForMonth(ctx context.Context, domain string, month, year int) ([]models.SurveyVote, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return s.ListVotesByDomain(ctx, domain, from, from.AddDate(0, 1, 0))
}

// anticheat.VoteCounter over the stored votes.

func (s *fakeStore) LastVoteAt(_ context.Context, fingerprint, domain string, since time.Time) (*time.Time, error) {
	var last *time.Time
	for i := range s.votes {
		v := &s.votes[i]
		if v.Fingerprint != fingerprint || scoring.NormalizeDomain(v.Domain) != domain || v.CreatedAt.Before(since) {
			continue
		}
		if last == nil || v.CreatedAt.After(*last) {
			t := v.CreatedAt
			last = &t
		}
	}
	return last, nil
}

func (s *fakeStore) CountDomainVotes(_ context.Context, fingerprint, domain string, since time.Time) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.Fingerprint == fingerprint && scoring.NormalizeDomain(v.Domain) == domain && !v.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CountTotalVotes(_ context.Context, fingerprint string, since time.Time) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.Fingerprint == fingerprint && !v.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// brokenCollector fails every collection. Handler tests that do not
// exercise the metric sources use it to make accidental calls obvious.
type brokenCollector struct{}

func (brokenCollector) GetMetrics(context.Context, *models.Organization, int, int, bool) (models.MetricsBundle, error) {
	return models.MetricsBundle{}, errors.New("collector not configured in test")
}

func (brokenCollector) GetPlausibleMetrics(context.Context, *models.Organization, int, int, bool) (models.MetricsBundle, error) {
	return models.MetricsBundle{}, errors.New("collector not configured in test")
}

type testEnv struct {
	store   *fakeStore
	handler *Handler
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, brokenCollector{})
}

func newTestEnvWith(t *testing.T, collector sources.MetricsCollector) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:      "0123456789abcdef0123456789abcdef",
			SessionTimeout: time.Hour,
		},
		Survey: config.SurveyConfig{
			CooldownWindow:      time.Minute,
			MaxDailyPerDomain:   1,
			MaxTotalDaily:       50,
			SuspiciousThreshold: 500,
		},
	}

	store := newFakeStore()
	jwt, err := auth.NewJWTManager(cfg.Security)
	require.NoError(t, err)

	gate := anticheat.NewGate(cfg.Survey, store)
	assembler := ranking.NewAssembler(store, collector)
	handler := NewHandler(cfg, store, gate, assembler, jwt)

	return &testEnv{store: store, handler: handler, jwt: jwt}
}

func (e *testEnv) token(t *testing.T, level int) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(primitive.NewObjectID().Hex(), "operator", level)
	require.NoError(t, err)
	return token
}

func (e *testEnv) tokenFor(t *testing.T, userID primitive.ObjectID, level int) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID.Hex(), "operator", level)
	require.NoError(t, err)
	return token
}

// router builds the full route tree with rate limiting disabled.
func (e *testEnv) router() http.Handler {
	mw := NewChiMiddleware(
		config.CORSConfig{AllowedOrigins: []string{"*"}},
		config.RateLimitConfig{Disabled: true},
	)
	return NewRouter(e.handler, e.jwt, mw).Setup()
}

// withURLParam injects a chi URL parameter for direct handler calls.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
