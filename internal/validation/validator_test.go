// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteRequest struct {
	Domain    string `validate:"required,sitedomain"`
	Usability int    `validate:"required,min=1,max=5"`
	Design    int    `validate:"required,min=1,max=5"`
	Search    int    `validate:"required,min=1,max=5"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&voteRequest{Domain: "example.uz", Usability: 5, Design: 3, Search: 1})
	assert.Nil(t, err)
}

func TestValidateStructRatingBounds(t *testing.T) {
	tests := []struct {
		name string
		req  voteRequest
	}{
		{"usability above max", voteRequest{Domain: "example.uz", Usability: 6, Design: 3, Search: 3}},
		{"design zero", voteRequest{Domain: "example.uz", Usability: 3, Design: 0, Search: 3}},
		{"search negative", voteRequest{Domain: "example.uz", Usability: 3, Design: 3, Search: -1}},
		{"missing domain", voteRequest{Usability: 3, Design: 3, Search: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			require.NotNil(t, err)
			assert.NotEmpty(t, err.Message())
		})
	}
}

func TestObjectIDValidator(t *testing.T) {
	type req struct {
		ID string `validate:"required,objectid"`
	}

	assert.Nil(t, ValidateStruct(&req{ID: "655f1c0de0a1b2c3d4e5f601"}))
	assert.NotNil(t, ValidateStruct(&req{ID: "not-an-id"}))
	assert.NotNil(t, ValidateStruct(&req{ID: "655f1c0de0a1b2c3d4e5f6"}))
}

func TestSiteDomainValidator(t *testing.T) {
	type req struct {
		Domain string `validate:"required,sitedomain"`
	}

	assert.Nil(t, ValidateStruct(&req{Domain: "natlib.uz"}))
	assert.Nil(t, ValidateStruct(&req{Domain: "Example.COM"}))
	assert.NotNil(t, ValidateStruct(&req{Domain: "http://natlib.uz"}))
	assert.NotNil(t, ValidateStruct(&req{Domain: "-bad.uz"}))
}

func TestMultipleErrorsCombined(t *testing.T) {
	err := ValidateStruct(&voteRequest{})
	require.NotNil(t, err)
	assert.GreaterOrEqual(t, len(err.Errors()), 4)
	assert.Contains(t, err.Message(), "Domain")
}
