// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

// Package anticheat guards public survey submission against spam and
// abuse. Identification uses a coarse header-derived fingerprint rather
// than the client IP; the IP is recorded for analytics only.
package anticheat

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// fingerprintLength is the number of hex characters kept from the hash.
const fingerprintLength = 16

// Fingerprint derives a stable per-browser identifier from request
// headers: SHA-256 over the pipe-joined non-empty values of User-Agent,
// Accept-Language, Accept-Encoding and Accept, truncated to 16 hex
// characters. Collisions are tolerated; this is an anti-abuse signal,
// not an identity.
func Fingerprint(r *http.Request) string {
	components := make([]string, 0, 4)
	for _, header := range []string{"User-Agent", "Accept-Language", "Accept-Encoding", "Accept"} {
		if v := r.Header.Get(header); v != "" {
			components = append(components, v)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
