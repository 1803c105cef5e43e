// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package scoring

import "math"

// Two expert aggregation formulas coexist: the admin overview rescales the
// expert average from its 60-point raw scale onto the 52-point display
// scale, while the public ratings endpoint divides the raw sum by the
// expected panel size of three. They are kept as separate named functions
// on purpose; unifying them would silently change displayed historical
// scores. Flagged for product clarification.

// expertPanelSize is the expected number of experts per organization and
// period. The public formula divides by it unconditionally; partial
// panels under-count.
const expertPanelSize = 3

// ExpertScoreScaled52 aggregates expert checklist totals for the admin
// overview: round((sum/count) / 60 * 52). Returns 0 for an empty panel.
func ExpertScoreScaled52(totals []int) int {
	if len(totals) == 0 {
		return 0
	}
	avg := float64(sum(totals)) / float64(len(totals))
	return int(math.Round(avg / 60 * 52))
}

// ExpertScoreThirds aggregates expert checklist totals for the public
// ratings endpoint: round(sum / 3). Returns 0 for an empty panel.
func ExpertScoreThirds(totals []int) int {
	if len(totals) == 0 {
		return 0
	}
	return int(math.Round(float64(sum(totals)) / expertPanelSize))
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// PreviousPeriod returns the month/year immediately before the given one.
// Expert trend is the plain delta between the current and previous period
// scores computed with the same formula.
func PreviousPeriod(month, year int) (int, int) {
	if month <= 1 {
		return 12, year - 1
	}
	return month - 1, year
}
