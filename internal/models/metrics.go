// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package models

// MetricSources records which upstream produced each metric group:
// "ok", "error", or "disabled".
type MetricSources struct {
	Plausible string `bson:"plausible" json:"plausible"`
	Uznel     string `bson:"uznel" json:"uznel"`
	Library   string `bson:"library" json:"library"`
}

// MetricsBundle is the seven-field metrics snapshot for an organization
// and period. Failed metrics are zero-filled with the failure recorded in
// Errors; a partially failed bundle is still scoreable.
type MetricsBundle struct {
	VisitCount              int `bson:"visit_count" json:"visitCount"`
	PageVisits              int `bson:"page_visits" json:"pageVisits"`
	InteractiveServiceUsage int `bson:"interactive_service_usage" json:"interactiveServiceUsage"`
	PersonalAccountCount    int `bson:"personal_account_count" json:"personalAccountCount"`
	ElectronicResourceCount int `bson:"electronic_resource_count" json:"electronicResourceCount"`
	NewsViewCount           int `bson:"news_view_count" json:"newsViewCount"`
	ElectronicResourceUsage int `bson:"electronic_resource_usage" json:"electronicResourceUsage"`

	Errors  []string      `bson:"errors,omitempty" json:"errors,omitempty"`
	Sources MetricSources `bson:"sources" json:"sources"`
}
