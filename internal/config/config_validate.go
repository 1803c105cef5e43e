// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package config

import (
	"errors"
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum acceptable JWT secret length.
const minJWTSecretLength = 32

// Validate checks the configuration for values that would make the server
// unsafe or inoperable. It returns all problems joined into a single error.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Mongo.URI) == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if strings.TrimSpace(c.Mongo.Database) == "" {
		errs = append(errs, errors.New("mongo.database is required"))
	}

	if len(c.Security.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("security.jwt_secret must be at least %d characters", minJWTSecretLength))
	}
	if c.Security.SessionTimeout <= 0 {
		errs = append(errs, errors.New("security.session_timeout must be positive"))
	}

	if c.Survey.CooldownWindow <= 0 {
		errs = append(errs, errors.New("survey.cooldown_window must be positive"))
	}
	if c.Survey.MaxDailyPerDomain < 1 {
		errs = append(errs, errors.New("survey.max_daily_per_domain must be at least 1"))
	}
	if c.Survey.MaxTotalDaily < 1 {
		errs = append(errs, errors.New("survey.max_total_daily must be at least 1"))
	}
	if c.Survey.SuspiciousThreshold < 1 {
		errs = append(errs, errors.New("survey.suspicious_threshold must be at least 1"))
	}

	if c.Plausible.Enabled {
		if strings.TrimSpace(c.Plausible.URL) == "" {
			errs = append(errs, errors.New("plausible.url is required when plausible is enabled"))
		}
		if c.Plausible.CacheTTL <= 0 {
			errs = append(errs, errors.New("plausible.cache_ttl must be positive"))
		}
	}
	if c.Uznel.Enabled && strings.TrimSpace(c.Uznel.URL) == "" {
		errs = append(errs, errors.New("uznel.url is required when uznel is enabled"))
	}

	if !c.RateLimit.Disabled {
		if c.RateLimit.Requests < 1 {
			errs = append(errs, errors.New("rate_limit.requests must be at least 1"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rate_limit.window must be positive"))
		}
	}

	return errors.Join(errs...)
}
