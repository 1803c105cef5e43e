// BiblioRank - Library Website Quality Rating and Survey Analytics
// Copyright 2026 BiblioRank contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bibliorank/bibliorank

package api

import (
	"net/http"

	"github.com/bibliorank/bibliorank/internal/auth"
	"github.com/bibliorank/bibliorank/internal/logging"
)

// Login verifies credentials and issues a session token. Unknown users
// and wrong passwords get the same message so the endpoint does not
// leak which usernames exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	user, err := h.store.FindUserByUsername(r.Context(), req.Username)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "login failed", err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Msg("failed login attempt")
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password", nil)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID.Hex(), user.Username, user.Level)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "login failed", err)
		return
	}

	respondData(w, r, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":        user.ID.Hex(),
			"username":  user.Username,
			"full_name": user.FullName,
			"level":     user.Level,
		},
	})
}
