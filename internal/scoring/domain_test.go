// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain domain", "example.com", "example.com"},
		{"uppercase with scheme port and path", "HTTPS://WWW.Example.com:8080/a/b", "example.com"},
		{"http scheme", "http://lib.example.uz", "lib.example.uz"},
		{"www only", "www.kitob.uz", "kitob.uz"},
		{"path and query", "example.com/survey?x=1#f", "example.com"},
		{"port only", "example.com:3000", "example.com"},
		{"empty", "", ""},
		{"whitespace", "  example.com  ", "example.com"},
		{"www in the middle is kept", "sub.www.example.com", "sub.www.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDomain(tt.input))
		})
	}
}

func TestNormalizeDomainIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://WWW.Example.com:8080/a/b",
		"http://www.lib.uz/page",
		"example.com",
		"www.example.com",
		"",
	}
	for _, in := range inputs {
		once := NormalizeDomain(in)
		assert.Equal(t, once, NormalizeDomain(once), "normalize(normalize(%q))", in)
	}
}

func TestDomainVariants(t *testing.T) {
	assert.Equal(t, []string{"example.com", "www.example.com"}, DomainVariants("https://www.example.com/path"))
	assert.Nil(t, DomainVariants(""))
}
