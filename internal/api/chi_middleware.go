// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/bibliorank/bibliorank/internal/config"
)

// ChiMiddleware builds the CORS and rate-limit middleware from config.
type ChiMiddleware struct {
	cfg  config.RateLimitConfig
	cors func(http.Handler) http.Handler
}

// NewChiMiddleware constructs the middleware factory. CORS origins
// default to none; cross-origin access requires explicit configuration.
func NewChiMiddleware(corsCfg config.CORSConfig, rateCfg config.RateLimitConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	return &ChiMiddleware{cfg: rateCfg, cors: corsHandler}
}

// CORS returns the configured CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the default IP rate limiter from config.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.custom(m.cfg.Requests, m.cfg.Window)
}

// RateLimitLogin is strict limiting for the login endpoint.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.custom(5, 5*time.Minute)
}

// RateLimitSurvey bounds public survey submissions per IP. The
// anti-cheat gate enforces the real policy; this only blunts floods.
func (m *ChiMiddleware) RateLimitSurvey() func(http.Handler) http.Handler {
	return m.custom(30, time.Minute)
}

// RateLimitHealth is permissive limiting for monitoring probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.custom(1000, time.Minute)
}

func (m *ChiMiddleware) custom(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.cfg.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window, httprate.WithKeyFuncs(httprate.KeyByRealIP))
}

// SecurityHeaders adds baseline security headers to API responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
