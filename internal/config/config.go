// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package config provides koanf-based configuration loading for BiblioRank.
//
// Configuration is resolved in three layers, later layers overriding earlier:
//
//  1. Struct defaults (defaultConfig)
//  2. YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables prefixed BIBLIORANK_ (BIBLIORANK_SERVER_ADDR, ...)
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Security  SecurityConfig  `koanf:"security"`
	Plausible PlausibleConfig `koanf:"plausible"`
	Uznel     UznelConfig     `koanf:"uznel"`
	Library   LibraryConfig   `koanf:"library"`
	Survey    SurveyConfig    `koanf:"survey"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Minimum 32 characters.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
}

// PlausibleConfig holds settings for the Plausible analytics metric source.
type PlausibleConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// CacheTTL is the staleness window for cached Plausible metrics,
	// checked at read time rather than actively evicted.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// UznelConfig holds settings for the Uznel/BBS metric source.
type UznelConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// LibraryConfig holds settings for per-organization library management
// system endpoints. The endpoint URL itself lives on the organization
// document; only client behavior is configured here.
type LibraryConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// SurveyConfig holds the anti-cheat thresholds for public survey votes.
// All four values are independently tunable; the gate never assumes a
// particular ordering between MaxTotalDaily and SuspiciousThreshold.
type SurveyConfig struct {
	// CooldownWindow is the minimum gap between two votes from the same
	// fingerprint for the same domain.
	CooldownWindow time.Duration `koanf:"cooldown_window"`

	// MaxDailyPerDomain caps votes per fingerprint per domain in 24h.
	MaxDailyPerDomain int `koanf:"max_daily_per_domain"`

	// MaxTotalDaily caps votes per fingerprint across all domains in 24h.
	MaxTotalDaily int `koanf:"max_total_daily"`

	// SuspiciousThreshold flags a fingerprint whose 24h global vote count
	// reaches this value.
	SuspiciousThreshold int `koanf:"suspicious_threshold"`
}

// RateLimitConfig holds IP-based rate limiting for public endpoints.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://127.0.0.1:27017",
			Database:       "bibliorank",
			ConnectTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:      "",
			SessionTimeout: 24 * time.Hour,
		},
		Plausible: PlausibleConfig{
			Enabled:  false,
			URL:      "https://plausible.io",
			APIKey:   "",
			Timeout:  30 * time.Second,
			CacheTTL: 6 * time.Hour,
		},
		Uznel: UznelConfig{
			Enabled: false,
			URL:     "",
			Timeout: 15 * time.Second,
		},
		Library: LibraryConfig{
			Timeout: 15 * time.Second,
		},
		Survey: SurveyConfig{
			CooldownWindow:      time.Minute,
			MaxDailyPerDomain:   1,
			MaxTotalDaily:       50,
			SuspiciousThreshold: 500,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
			Disabled: false,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
