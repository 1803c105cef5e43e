// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package scoring

import (
	"math"

	"github.com/bibliorank/bibliorank/internal/models"
)

// SurveyAverages are the per-category and combined vote averages, rounded
// to 2 decimals.
type SurveyAverages struct {
	Usability float64 `json:"usability"`
	Design    float64 `json:"design"`
	Search    float64 `json:"search"`
	Overall   float64 `json:"overall"`
}

// DomainStats are the public statistics for one domain's survey votes.
type DomainStats struct {
	TotalVotes   int            `json:"total_votes"`
	UniqueVoters int            `json:"unique_voters"`
	Averages     SurveyAverages `json:"averages"`
}

// ComputeDomainStats aggregates accepted votes into display statistics:
// vote count, distinct non-empty fingerprints, and per-category averages
// plus the overall average across all three categories combined.
func ComputeDomainStats(votes []models.SurveyVote) DomainStats {
	stats := DomainStats{TotalVotes: len(votes)}
	if len(votes) == 0 {
		return stats
	}

	voters := make(map[string]struct{}, len(votes))
	var usability, design, search int
	for _, v := range votes {
		if v.Fingerprint != "" {
			voters[v.Fingerprint] = struct{}{}
		}
		usability += v.Responses.Usability
		design += v.Responses.Design
		search += v.Responses.Search
	}

	n := float64(len(votes))
	stats.UniqueVoters = len(voters)
	stats.Averages = SurveyAverages{
		Usability: round2(float64(usability) / n),
		Design:    round2(float64(design) / n),
		Search:    round2(float64(search) / n),
		Overall:   round2(float64(usability+design+search) / (n * 3)),
	}
	return stats
}

// MonthlySurveyScore is the user-score input for the ranking pipeline:
// the average of per-vote (usability+design+search) sums across all
// matching votes, rounded to 1 decimal. A vote of all fives contributes
// 15, so the result lives naturally on the 52-point display scale's
// user-score band. Returns 0 for no votes.
func MonthlySurveyScore(votes []models.SurveyVote) float64 {
	if len(votes) == 0 {
		return 0
	}
	total := 0
	for _, v := range votes {
		total += v.Responses.Usability + v.Responses.Design + v.Responses.Search
	}
	return round1(float64(total) / float64(len(votes)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
