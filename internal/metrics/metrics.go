// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package metrics exposes Prometheus instrumentation for the HTTP API,
// the survey pipeline, and the external metric sources.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibliorank_api_requests_total",
			Help: "Total API requests by method, endpoint, and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bibliorank_api_request_duration_seconds",
			Help:    "API request latency by method and endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bibliorank_api_active_requests",
			Help: "In-flight API requests",
		},
	)

	surveyVotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibliorank_survey_votes_total",
			Help: "Survey votes by outcome (admitted or the rejection reason)",
		},
		[]string{"outcome"},
	)

	sourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibliorank_source_fetches_total",
			Help: "External metric source fetches by source and result",
		},
		[]string{"source", "result"},
	)

	sourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bibliorank_source_fetch_duration_seconds",
			Help:    "External metric source fetch latency by source",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibliorank_batch_runs_total",
			Help: "Batch metric collection runs by kind",
		},
		[]string{"kind"},
	)

	batchOrganizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibliorank_batch_organizations_total",
			Help: "Organizations processed by batch runs, by kind and status",
		},
		[]string{"kind", "status"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		activeRequests.Inc()
	} else {
		activeRequests.Dec()
	}
}

// RecordVoteAdmitted counts an admitted survey vote.
func RecordVoteAdmitted() {
	surveyVotesTotal.WithLabelValues("admitted").Inc()
}

// RecordVoteRejected counts a rejected survey vote by anti-cheat reason.
func RecordVoteRejected(reason string) {
	surveyVotesTotal.WithLabelValues(reason).Inc()
}

// RecordSourceFetch records one external metric source call.
func RecordSourceFetch(source string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	sourceFetchesTotal.WithLabelValues(source, result).Inc()
	sourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordBatchRun records a batch collection run and its per-organization
// outcomes.
func RecordBatchRun(kind string, succeeded, failed int) {
	batchRunsTotal.WithLabelValues(kind).Inc()
	batchOrganizations.WithLabelValues(kind, "success").Add(float64(succeeded))
	batchOrganizations.WithLabelValues(kind, "error").Add(float64(failed))
}
