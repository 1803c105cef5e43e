// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "/api/v1/survey/ratings", "200"))
	RecordAPIRequest("GET", "/api/v1/survey/ratings", "200", 25*time.Millisecond)
	after := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "/api/v1/survey/ratings", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(activeRequests)
	TrackActiveRequest(true)
	assert.Equal(t, base+1, testutil.ToFloat64(activeRequests))
	TrackActiveRequest(false)
	assert.Equal(t, base, testutil.ToFloat64(activeRequests))
}

func TestRecordVoteOutcomes(t *testing.T) {
	admitted := testutil.ToFloat64(surveyVotesTotal.WithLabelValues("admitted"))
	cooldown := testutil.ToFloat64(surveyVotesTotal.WithLabelValues("DOMAIN_COOLDOWN"))

	RecordVoteAdmitted()
	RecordVoteRejected("DOMAIN_COOLDOWN")

	assert.Equal(t, admitted+1, testutil.ToFloat64(surveyVotesTotal.WithLabelValues("admitted")))
	assert.Equal(t, cooldown+1, testutil.ToFloat64(surveyVotesTotal.WithLabelValues("DOMAIN_COOLDOWN")))
}

func TestRecordSourceFetch(t *testing.T) {
	ok := testutil.ToFloat64(sourceFetchesTotal.WithLabelValues("plausible", "ok"))
	failed := testutil.ToFloat64(sourceFetchesTotal.WithLabelValues("uznel", "error"))

	RecordSourceFetch("plausible", 100*time.Millisecond, nil)
	RecordSourceFetch("uznel", time.Second, errors.New("timeout"))

	assert.Equal(t, ok+1, testutil.ToFloat64(sourceFetchesTotal.WithLabelValues("plausible", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(sourceFetchesTotal.WithLabelValues("uznel", "error")))
}

func TestRecordBatchRun(t *testing.T) {
	runs := testutil.ToFloat64(batchRunsTotal.WithLabelValues("collect_all"))
	RecordBatchRun("collect_all", 5, 2)
	assert.Equal(t, runs+1, testutil.ToFloat64(batchRunsTotal.WithLabelValues("collect_all")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(batchOrganizations.WithLabelValues("collect_all", "success")), 5.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(batchOrganizations.WithLabelValues("collect_all", "error")), 2.0)
}
