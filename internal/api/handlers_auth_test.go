// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/models"
)

func seedUser(t *testing.T, env *testEnv, username, password string, level int) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		FullName:     "Test Operator",
		PasswordHash: hash,
		Level:        level,
	}
	env.store.users[username] = user
	return user
}

func postLogin(env *testEnv, t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.Login(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "rais", "correct horse battery", models.LevelRais)

	rec := postLogin(env, t, "rais", "correct horse battery")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Level    int    `json:"level"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID.Hex(), resp.Data.User.ID)
	assert.Equal(t, models.LevelRais, resp.Data.User.Level)

	claims, err := env.jwt.ValidateToken(resp.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.LevelRais, claims.Level)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "rais", "correct horse battery", models.LevelRais)

	rec := postLogin(env, t, "rais", "wrong password here")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid username or password", resp.Error.Message)
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := postLogin(env, t, "nobody", "whatever password")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid username or password", resp.Error.Message)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := postLogin(env, t, "ab", "short")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
}
