// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package scoring

import "github.com/bibliorank/bibliorank/internal/models"

// bucket maps values up to and including Threshold to Points.
type bucket struct {
	Threshold int
	Points    int
}

// metricTable scores one metric: a zero value scores zero, a value within
// a bucket scores that bucket, and a value above the top threshold scores
// MaxPoints.
type metricTable struct {
	Buckets   []bucket
	MaxPoints int
}

// score maps a raw metric value to its bucket points.
//
// Negative values are not clamped: they miss the zero check and land in
// the lowest non-zero bucket. This mirrors the historical behavior and is
// deliberately left uncorrected so stored scores stay comparable.
func (t metricTable) score(value int) int {
	if value == 0 {
		return 0
	}
	for _, b := range t.Buckets {
		if value <= b.Threshold {
			return b.Points
		}
	}
	return t.MaxPoints
}

// Bucket tables per metric. Thresholds are inclusive upper bounds in
// strictly ascending order.
var (
	visitCountTable = metricTable{
		Buckets:   []bucket{{90, 1}, {210, 2}, {300, 3}, {390, 4}},
		MaxPoints: 5,
	}
	pageVisitsTable = metricTable{
		Buckets:   []bucket{{290, 1}, {410, 2}, {500, 3}},
		MaxPoints: 4,
	}
	interactiveServiceUsageTable = metricTable{
		Buckets:   []bucket{{15, 1}, {30, 2}, {45, 3}, {60, 4}},
		MaxPoints: 5,
	}
	personalAccountCountTable = metricTable{
		Buckets:   []bucket{{20, 1}, {40, 2}, {60, 3}},
		MaxPoints: 4,
	}
	electronicResourceCountTable = metricTable{
		Buckets:   []bucket{{2, 1}, {5, 2}, {8, 3}, {11, 4}},
		MaxPoints: 5,
	}
	newsViewCountTable = metricTable{
		Buckets:   []bucket{{3, 1}, {6, 2}, {9, 3}, {12, 4}},
		MaxPoints: 5,
	}
	electronicResourceUsageTable = metricTable{
		Buckets:   []bucket{{4, 1}, {7, 2}, {10, 3}, {13, 4}},
		MaxPoints: 5,
	}
)

// MaxAutoScore is the highest total CalculatePoints can produce.
const MaxAutoScore = 33

// CalculatePoints maps a metrics bundle to its automated score in
// [0, MaxAutoScore]. Pure function; the caller owns persistence.
func CalculatePoints(m models.MetricsBundle) int {
	return visitCountTable.score(m.VisitCount) +
		pageVisitsTable.score(m.PageVisits) +
		interactiveServiceUsageTable.score(m.InteractiveServiceUsage) +
		personalAccountCountTable.score(m.PersonalAccountCount) +
		electronicResourceCountTable.score(m.ElectronicResourceCount) +
		newsViewCountTable.score(m.NewsViewCount) +
		electronicResourceUsageTable.score(m.ElectronicResourceUsage)
}
