// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliorank/bibliorank/internal/config"
	"github.com/bibliorank/bibliorank/internal/models"
)

func testManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.SecurityConfig{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		SessionTimeout: timeout,
	})
	require.NoError(t, err)
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(config.SecurityConfig{})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager(t, time.Hour)

	token, err := m.GenerateToken("655f1c0de0a1b2c3d4e5f601", "rais", models.LevelRais)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "655f1c0de0a1b2c3d4e5f601", claims.UserID)
	assert.Equal(t, "rais", claims.Username)
	assert.Equal(t, models.LevelRais, claims.Level)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := testManager(t, -time.Minute)

	token, err := m.GenerateToken("id", "user", models.LevelUser)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := testManager(t, time.Hour)
	other := testManager(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")

	token, err := m.GenerateToken("id", "user", models.LevelUser)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := testManager(t, time.Hour)
	_, err := m.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
