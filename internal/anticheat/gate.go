// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package anticheat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bibliorank/bibliorank/internal/config"
)

// Reason is the machine-readable rejection cause returned to clients.
type Reason string

const (
	ReasonDomainCooldown   Reason = "DOMAIN_COOLDOWN"
	ReasonDomainDailyLimit Reason = "DOMAIN_DAILY_LIMIT"
	ReasonTotalDailyLimit  Reason = "TOTAL_DAILY_LIMIT"
	ReasonSuspicious       Reason = "SUSPICIOUS"
)

// dailyWindow is the lookback for the per-domain and global caps.
const dailyWindow = 24 * time.Hour

// VoteCounter is the persisted-vote view the gate needs. Counting against
// the vote store directly keeps the gate correct across multiple server
// instances at the cost of a query per check.
type VoteCounter interface {
	// LastVoteAt returns the creation time of the most recent vote from
	// the fingerprint for the domain at or after since, or nil when none.
	LastVoteAt(ctx context.Context, fingerprint, domain string, since time.Time) (*time.Time, error)

	// CountDomainVotes counts the fingerprint's votes for the domain at
	// or after since.
	CountDomainVotes(ctx context.Context, fingerprint, domain string, since time.Time) (int64, error)

	// CountTotalVotes counts the fingerprint's votes across all domains
	// at or after since.
	CountTotalVotes(ctx context.Context, fingerprint string, since time.Time) (int64, error)
}

// Decision is the gate's verdict on one incoming vote.
type Decision struct {
	Allowed bool
	Reason  Reason

	// MinutesLeft reports, for DOMAIN_COOLDOWN rejections, the whole
	// minutes until the cooldown from the prior vote expires (at least 1).
	MinutesLeft int

	// DomainDaily and TotalDaily carry the pre-increment 24h counts for
	// logging on admitted votes.
	DomainDaily int64
	TotalDaily  int64
}

// Gate is the stateful rate limiter over the fingerprint+domain keyspace.
// All thresholds come from the SurveyConfig handed to the constructor so
// tests can tighten or bypass windows without process-wide mutation.
type Gate struct {
	cfg   config.SurveyConfig
	votes VoteCounter
	now   func() time.Time
}

// NewGate builds a gate over the given vote store.
func NewGate(cfg config.SurveyConfig, votes VoteCounter) *Gate {
	return &Gate{cfg: cfg, votes: votes, now: time.Now}
}

// WithClock overrides the gate's clock. Test hook.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Check runs the admission state machine for one incoming vote. The
// domain must already be normalized. Checks run in order: domain
// cooldown, domain daily cap, global daily cap, suspicion flag. With the
// default configuration the suspicion threshold sits above the global cap
// and cannot fire; the branch is kept because both values are
// independently tunable.
func (g *Gate) Check(ctx context.Context, fingerprint, domain string) (Decision, error) {
	now := g.now()

	cooldownStart := now.Add(-g.cfg.CooldownWindow)
	last, err := g.votes.LastVoteAt(ctx, fingerprint, domain, cooldownStart)
	if err != nil {
		return Decision{}, fmt.Errorf("cooldown lookup: %w", err)
	}
	if last != nil {
		remaining := last.Add(g.cfg.CooldownWindow).Sub(now)
		minutes := int(math.Ceil(remaining.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		return Decision{Reason: ReasonDomainCooldown, MinutesLeft: minutes}, nil
	}

	dayStart := now.Add(-dailyWindow)
	domainDaily, err := g.votes.CountDomainVotes(ctx, fingerprint, domain, dayStart)
	if err != nil {
		return Decision{}, fmt.Errorf("domain daily count: %w", err)
	}
	if domainDaily >= int64(g.cfg.MaxDailyPerDomain) {
		return Decision{Reason: ReasonDomainDailyLimit, DomainDaily: domainDaily}, nil
	}

	totalDaily, err := g.votes.CountTotalVotes(ctx, fingerprint, dayStart)
	if err != nil {
		return Decision{}, fmt.Errorf("total daily count: %w", err)
	}
	if totalDaily >= int64(g.cfg.MaxTotalDaily) {
		return Decision{Reason: ReasonTotalDailyLimit, TotalDaily: totalDaily}, nil
	}
	if totalDaily >= int64(g.cfg.SuspiciousThreshold) {
		return Decision{Reason: ReasonSuspicious, TotalDaily: totalDaily}, nil
	}

	return Decision{Allowed: true, DomainDaily: domainDaily, TotalDaily: totalDaily}, nil
}
