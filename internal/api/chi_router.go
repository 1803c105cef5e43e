// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/middleware"
	"github.com/bibliorank/bibliorank/internal/models"
)

// Router wires the handler set into a chi router.
type Router struct {
	handler *Handler
	jwt     *auth.JWTManager
	mw      *ChiMiddleware
}

// NewRouter constructs the router wiring.
func NewRouter(handler *Handler, jwt *auth.JWTManager, mw *ChiMiddleware) *Router {
	return &Router{handler: handler, jwt: jwt, mw: mw}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(SecurityHeaders)
		r.With(router.mw.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	// Public survey surface. No auth; the anti-cheat gate and IP rate
	// limits are the only guards.
	r.Route("/api/v1/survey", func(r chi.Router) {
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Compression)

		r.With(router.mw.RateLimitSurvey()).Post("/", router.handler.SubmitVote)

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit())
			r.Get("/stats/{domain}", router.handler.SurveyStats)
			r.Get("/ratings", router.handler.PublicRatings)
			r.Get("/ratings/{organizationID}", router.handler.PublicRatingDetail)
		})
	})

	// Operator surface behind the level hierarchy.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Use(router.mw.RateLimit())
		r.Use(router.jwt.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLevel(models.LevelModerator))
			r.Get("/organizations", router.handler.ListOrganizations)
			r.Get("/organizations/{organizationID}", router.handler.GetOrganization)
			r.Post("/organizations", router.handler.CreateOrganization)
			r.Put("/organizations/{organizationID}", router.handler.UpdateOrganization)
			r.Delete("/organizations/{organizationID}", router.handler.DeleteOrganization)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLevel(models.LevelExpert))
			r.Post("/ratings/website", router.handler.SubmitWebsiteRating)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLevel(models.LevelAdmin))
			r.Post("/assignments", router.handler.CreateAssignment)
			r.Get("/assignments", router.handler.ListAssignments)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLevel(models.LevelRais))
			r.Get("/ratings/overall", router.handler.AdminOverall)
			r.Put("/ratings/user", router.handler.SetUserRating)
			r.Post("/fetch-plausible-data", router.handler.FetchPlausibleData)
			r.Post("/collect-all-data", router.handler.CollectAllData)
		})
	})

	return r
}
