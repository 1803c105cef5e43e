// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/models"
)

func voteBody(t *testing.T, domain string, usability, design, search int) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"domain": domain,
		"responses": map[string]int{
			"usability": usability,
			"design":    design,
			"search":    search,
		},
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func submitVote(env *testEnv, t *testing.T, domain string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/survey", voteBody(t, domain, 4, 5, 3))
	req.Header.Set("User-Agent", "Mozilla/5.0 test")
	req.Header.Set("Accept-Language", "uz-UZ")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.handler.SubmitVote(rec, req)
	return rec
}

func TestSubmitVoteAdmitsAndStores(t *testing.T) {
	env := newTestEnv(t)

	rec := submitVote(env, t, "https://www.Natlib.UZ/news", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, env.store.votes, 1)
	vote := env.store.votes[0]
	assert.Equal(t, "natlib.uz", vote.Domain)
	assert.Len(t, vote.Fingerprint, 16)
	assert.Equal(t, 4, vote.Responses.Usability)
}

func TestSubmitVoteValidationBeforeAntiCheat(t *testing.T) {
	env := newTestEnv(t)

	// Invalid ratings must 400 without consulting the gate or storing.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/survey", voteBody(t, "natlib.uz", 6, 5, 3))
	rec := httptest.NewRecorder()
	env.handler.SubmitVote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.votes)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
}

func TestSubmitVoteMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/survey", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	env.handler.SubmitVote(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitVoteCooldownRejection(t *testing.T) {
	env := newTestEnv(t)

	first := submitVote(env, t, "natlib.uz", nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := submitVote(env, t, "natlib.uz", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTooManyRequests, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "DOMAIN_COOLDOWN", details["reason"])
	assert.GreaterOrEqual(t, details["retry_after_minutes"], float64(1))

	require.Len(t, env.store.votes, 1)
}

func TestSubmitVoteDifferentDomainSameMinute(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, submitVote(env, t, "natlib.uz", nil).Code)
	assert.Equal(t, http.StatusCreated, submitVote(env, t, "edulib.uz", nil).Code)
}

func TestSubmitVoteDomainNormalizationDeduplicates(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, submitVote(env, t, "https://natlib.uz/a", nil).Code)
	// Same site spelled differently is still the same domain to the gate.
	assert.Equal(t, http.StatusTooManyRequests, submitVote(env, t, "WWW.NATLIB.UZ:8080", nil).Code)
}

func TestSurveyStats(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.store.votes = []models.SurveyVote{
		{Domain: "natlib.uz", Fingerprint: "aaaa", CreatedAt: now,
			Responses: models.SurveyResponses{Usability: 5, Design: 4, Search: 3}},
		{Domain: "www.natlib.uz", Fingerprint: "bbbb", CreatedAt: now,
			Responses: models.SurveyResponses{Usability: 3, Design: 4, Search: 5}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/survey/stats/natlib.uz", nil)
	req = withURLParam(req, "domain", "natlib.uz")
	rec := httptest.NewRecorder()
	env.handler.SurveyStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Domain string `json:"domain"`
			Stats  struct {
				TotalVotes   int `json:"total_votes"`
				UniqueVoters int `json:"unique_voters"`
				Averages     struct {
					Usability float64 `json:"usability"`
					Overall   float64 `json:"overall"`
				} `json:"averages"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Stats.TotalVotes)
	assert.Equal(t, 2, resp.Data.Stats.UniqueVoters)
	assert.Equal(t, 4.0, resp.Data.Stats.Averages.Usability)
	assert.Equal(t, 4.0, resp.Data.Stats.Averages.Overall)
}

func TestSurveyStatsRejectsBadDate(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/survey/stats/natlib.uz?startDate=junk", nil)
	req = withURLParam(req, "domain", "natlib.uz")
	rec := httptest.NewRecorder()
	env.handler.SurveyStats(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicRatingsEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	orgID := primitive.NewObjectID()
	env.store.orgs = []models.Organization{{ID: orgID, Name: "Org X", URL: "https://orgx.uz"}}
	env.store.auto[key(orgID, 6, 2024)] = &models.AutoRating{
		OrganizationID: orgID, Month: 6, Year: 2024, TotalScore: 20, Source: models.AutoSourceComprehensive,
	}
	for _, total := range []int{40, 45, 50} {
		k := key(orgID, 6, 2024)
		env.store.ratings[k] = append(env.store.ratings[k], models.WebsiteRating{
			UserID: primitive.NewObjectID(), OrganizationID: orgID, Month: 6, Year: 2024, TotalScore: total,
		})
	}
	created := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	env.store.votes = []models.SurveyVote{
		{Domain: "orgx.uz", Fingerprint: "aaaa", CreatedAt: created,
			Responses: models.SurveyResponses{Usability: 5, Design: 5, Search: 4}},
		{Domain: "orgx.uz", Fingerprint: "bbbb", CreatedAt: created,
			Responses: models.SurveyResponses{Usability: 4, Design: 4, Search: 5}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/survey/ratings?month=6&year=2024", nil)
	rec := httptest.NewRecorder()
	env.handler.PublicRatings(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Month         int `json:"month"`
			Organizations []struct {
				Name   string `json:"name"`
				Rank   int    `json:"rank"`
				Scores struct {
					Expert    int     `json:"expert"`
					Automatic int     `json:"automatic"`
					User      float64 `json:"user"`
					Total     float64 `json:"total"`
				} `json:"scores"`
			} `json:"organizations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Organizations, 1)

	org := resp.Data.Organizations[0]
	assert.Equal(t, 45, org.Scores.Expert)
	assert.Equal(t, 20, org.Scores.Automatic)
	assert.Equal(t, 13.5, org.Scores.User)
	assert.Equal(t, 78.5, org.Scores.Total)
	assert.Equal(t, 1, org.Rank)
}

func TestPublicRatingDetailUnknownOrganization(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/survey/ratings/"+primitive.NewObjectID().Hex(), nil)
	req = withURLParam(req, "organizationID", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	env.handler.PublicRatingDetail(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
