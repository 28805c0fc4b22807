package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/minitoco/minitoco/internal/service"
)

// TokenHandler issues and refreshes JWT token pairs.
type TokenHandler struct {
	auth *service.AuthService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(auth *service.AuthService) *TokenHandler {
	return &TokenHandler{auth: auth}
}

// HandleCreate processes an OAuth-style token request.
// POST /api/tokens
// Request:  {"grant_type":"password","username":"...","password":"..."}
//
//	or {"grant_type":"refresh_token","refresh_token":"..."}
func (h *TokenHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GrantType    string `json:"grant_type"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	var (
		tokens *service.TokenData
		err    error
	)
	switch req.GrantType {
	case "password":
		tokens, err = h.auth.IssueToken(r.Context(), req.Username, req.Password)
	case "refresh_token":
		tokens, err = h.auth.RefreshToken(r.Context(), req.RefreshToken)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported grant_type.")
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		slog.Error("issue token", "grant_type", req.GrantType, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, toTokenDataDTO(tokens))
}
