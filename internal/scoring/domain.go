// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package scoring implements the pure scoring and aggregation functions of
// the rating pipeline: domain normalization, automated metric bucketing,
// expert checklist aggregation, and survey vote statistics.
package scoring

import "strings"

// NormalizeDomain produces a comparable site identifier from a free-form
// URL. Two domain strings refer to the same site iff their normalized
// forms are equal. This is the single normalization definition; every
// call site that compares organization URLs, vote domains, or cache site
// IDs must go through it.
//
// Normalization: lowercase, strip http:///https:// scheme, strip a
// leading "www.", truncate at the first "/" and then at the first ":".
// Empty input yields empty string.
func NormalizeDomain(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	if i := strings.IndexByte(domain, ':'); i >= 0 {
		domain = domain[:i]
	}
	return domain
}

// DomainVariants returns the set of stored-domain spellings that should
// match the given URL when querying historical survey votes. Older votes
// may have been stored with a literal "www." prefix; the variants are a
// compatibility shim for those documents, not the primary matching
// mechanism.
func DomainVariants(raw string) []string {
	domain := NormalizeDomain(raw)
	if domain == "" {
		return nil
	}
	return []string{domain, "www." + domain}
}
