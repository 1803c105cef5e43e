// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package anticheat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliorank/bibliorank/internal/config"
)

// memVotes is an in-memory VoteCounter recording (fingerprint, domain,
// createdAt) triples.
type memVotes struct {
	entries []memVote
}

type memVote struct {
	fp, domain string
	at         time.Time
}

func (m *memVotes) add(fp, domain string, at time.Time) {
	m.entries = append(m.entries, memVote{fp, domain, at})
}

func (m *memVotes) LastVoteAt(_ context.Context, fp, domain string, since time.Time) (*time.Time, error) {
	var last *time.Time
	for _, e := range m.entries {
		if e.fp == fp && e.domain == domain && !e.at.Before(since) {
			if last == nil || e.at.After(*last) {
				at := e.at
				last = &at
			}
		}
	}
	return last, nil
}

func (m *memVotes) CountDomainVotes(_ context.Context, fp, domain string, since time.Time) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.fp == fp && e.domain == domain && !e.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memVotes) CountTotalVotes(_ context.Context, fp string, since time.Time) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.fp == fp && !e.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func defaultSurveyConfig() config.SurveyConfig {
	return config.SurveyConfig{
		CooldownWindow:      time.Minute,
		MaxDailyPerDomain:   1,
		MaxTotalDaily:       50,
		SuspiciousThreshold: 500,
	}
}

func newTestGate(cfg config.SurveyConfig, votes *memVotes, now time.Time) *Gate {
	return NewGate(cfg, votes).WithClock(func() time.Time { return now })
}

func TestFirstVoteAdmitted(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	gate := newTestGate(defaultSurveyConfig(), &memVotes{}, now)

	d, err := gate.Check(context.Background(), "fp1", "example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Zero(t, d.DomainDaily)
	assert.Zero(t, d.TotalDaily)
}

func TestDomainCooldownRejectsImmediateSecondVote(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	votes := &memVotes{}
	votes.add("fp1", "example.com", now.Add(-10*time.Second))
	gate := newTestGate(defaultSurveyConfig(), votes, now)

	d, err := gate.Check(context.Background(), "fp1", "example.com")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonDomainCooldown, d.Reason)
	assert.GreaterOrEqual(t, d.MinutesLeft, 1)
}

func TestCooldownIsDomainScoped(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	votes := &memVotes{}
	votes.add("fp1", "example.com", now.Add(-10*time.Second))
	gate := newTestGate(defaultSurveyConfig(), votes, now)

	d, err := gate.Check(context.Background(), "fp1", "other.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "vote for a different domain within the same minute must pass")
}

func TestDomainDailyLimit(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cfg := defaultSurveyConfig()
	cfg.MaxDailyPerDomain = 3
	votes := &memVotes{}
	gate := newTestGate(cfg, votes, now)

	// Hourly spacing keeps each vote clear of the 1-minute cooldown.
	for i := 0; i < 3; i++ {
		votes.add("fp1", "example.com", now.Add(-time.Duration(i+1)*time.Hour))
	}

	d, err := gate.Check(context.Background(), "fp1", "example.com")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonDomainDailyLimit, d.Reason)
	assert.Equal(t, int64(3), d.DomainDaily)
}

func TestDomainVotesOlderThanADayExpire(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	votes := &memVotes{}
	votes.add("fp1", "example.com", now.Add(-25*time.Hour))
	gate := newTestGate(defaultSurveyConfig(), votes, now)

	d, err := gate.Check(context.Background(), "fp1", "example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestTotalDailyLimitAcrossDomains(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cfg := defaultSurveyConfig()
	cfg.MaxTotalDaily = 5
	votes := &memVotes{}
	for i := 0; i < 5; i++ {
		votes.add("fp1", "domain"+string(rune('a'+i))+".com", now.Add(-time.Duration(i+1)*time.Hour))
	}
	gate := newTestGate(cfg, votes, now)

	// Each individual domain is under its own cap; the global cap fires.
	d, err := gate.Check(context.Background(), "fp1", "fresh.com")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTotalDailyLimit, d.Reason)
	assert.Equal(t, int64(5), d.TotalDaily)
}

func TestSuspiciousThresholdReachableWhenLowered(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cfg := defaultSurveyConfig()
	cfg.MaxTotalDaily = 100
	cfg.SuspiciousThreshold = 3
	votes := &memVotes{}
	for i := 0; i < 3; i++ {
		votes.add("fp1", "domain"+string(rune('a'+i))+".com", now.Add(-time.Duration(i+1)*time.Hour))
	}
	gate := newTestGate(cfg, votes, now)

	d, err := gate.Check(context.Background(), "fp1", "fresh.com")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonSuspicious, d.Reason)
}

func TestSuspiciousUnreachableWithDefaults(t *testing.T) {
	// Default config: global cap (50) fires before the suspicion
	// threshold (500) can ever be observed.
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cfg := defaultSurveyConfig()
	votes := &memVotes{}
	for i := 0; i < cfg.MaxTotalDaily; i++ {
		votes.add("fp1", "a.com", now.Add(-time.Duration(i+2)*time.Minute))
	}
	gate := newTestGate(cfg, votes, now)

	d, err := gate.Check(context.Background(), "fp1", "fresh.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonTotalDailyLimit, d.Reason)
}

func TestOtherFingerprintUnaffected(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	votes := &memVotes{}
	votes.add("fp1", "example.com", now.Add(-10*time.Second))
	gate := newTestGate(defaultSurveyConfig(), votes, now)

	d, err := gate.Check(context.Background(), "fp2", "example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
