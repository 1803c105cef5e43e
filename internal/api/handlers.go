// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/anticheat"
	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/models"
	"github.com/bibliorank/bibliorank/internal/ranking"
)

// Store is the persistence surface the handlers require. It extends the
// assembler's read surface with the write operations of the operator
// endpoints. *database.DB satisfies it.
type Store interface {
	ranking.Store

	FindUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateOrganization(ctx context.Context, org *models.Organization) error
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	DeleteOrganization(ctx context.Context, id primitive.ObjectID) error

	CreateAssignment(ctx context.Context, a *models.RatingAssignment) error
	GetAssignment(ctx context.Context, userID primitive.ObjectID, month, year int) (*models.RatingAssignment, error)
	ListAssignments(ctx context.Context, month, year int) ([]models.RatingAssignment, error)

	UpsertWebsiteRating(ctx context.Context, r *models.WebsiteRating) error
	UpsertUserRating(ctx context.Context, r *models.UserRating) error

	InsertSurveyVote(ctx context.Context, v *models.SurveyVote) error
	ListVotesByDomain(ctx context.Context, domain string, from, to time.Time) ([]models.SurveyVote, error)
}

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	cfg       *config.Config
	store     Store
	gate      *anticheat.Gate
	assembler *ranking.Assembler
	jwt       *auth.JWTManager
	startedAt time.Time
}

// NewHandler constructs the handler set.
func NewHandler(cfg *config.Config, store Store, gate *anticheat.Gate, assembler *ranking.Assembler, jwt *auth.JWTManager) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		gate:      gate,
		assembler: assembler,
		jwt:       jwt,
		startedAt: time.Now(),
	}
}

// Health reports liveness and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// periodFromQuery reads month/year query parameters, defaulting to the
// current calendar month.
func periodFromQuery(r *http.Request) (int, int) {
	now := time.Now()
	month := getIntParam(r, "month", int(now.Month()))
	year := getIntParam(r, "year", now.Year())
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	return month, year
}

// getIntParam extracts an integer query parameter with a default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}
