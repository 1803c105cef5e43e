// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package main is the entry point for the BiblioRank server.
//
// BiblioRank rates the websites of library organizations each month from
// three inputs: expert checklist ratings, automated usage metrics, and a
// public visitor survey. The server exposes the public survey and rating
// endpoints alongside the operator API.
//
// The server initializes components in the following order:
//
//  1. Configuration: koanf layers (defaults, config.yaml, BIBLIORANK_ env vars)
//  2. Logging: zerolog, JSON or console format
//  3. Database: MongoDB connection and index creation
//  4. Metric sources: Plausible, Uznel, and library system clients
//  5. HTTP server: chi router with JWT-protected operator routes
//
// Shutdown on SIGINT or SIGTERM drains in-flight requests within the
// configured timeout before closing the database connection.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/bibliorank/bibliorank/internal/anticheat"
	"github.com/bibliorank/bibliorank/internal/api"
	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/database"
	"github.com/bibliorank/bibliorank/internal/logging"
	"github.com/bibliorank/bibliorank/internal/ranking"
	"github.com/bibliorank/bibliorank/internal/sources"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Str("addr", cfg.Server.Addr).Msg("starting BiblioRank server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logging.Error().Err(err).Msg("database close failed")
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		return err
	}

	collector := sources.NewCollector(cfg, db)
	gate := anticheat.NewGate(cfg.Survey, db)
	assembler := ranking.NewAssembler(db, collector)

	handler := api.NewHandler(cfg, db, gate, assembler, jwtManager)
	mw := api.NewChiMiddleware(cfg.CORS, cfg.RateLimit)
	router := api.NewRouter(handler, jwtManager, mw)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown incomplete")
		return err
	}

	logging.Info().Msg("server stopped")
	return nil
}
