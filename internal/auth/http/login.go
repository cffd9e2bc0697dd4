package http

import (
	"net/http"

	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/pkg/httpx"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID        string `json:"userId"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	EmailVerified bool   `json:"emailVerified"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// HandleLogin exchanges credentials for a token pair.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if !h.allow(w, r, "login", req.Email, rate.LoginPerIP, rate.LoginPerEmail) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		UserID:        res.User.ID,
		AccessToken:   res.Tokens.AccessToken,
		RefreshToken:  res.Tokens.RefreshToken,
		EmailVerified: true,
	})
}

// HandleRefresh rotates a refresh session and returns a new token pair.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{"refreshToken": req.RefreshToken}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogout revokes the refresh token's session. A malformed token is the
// only failure; revoking twice is fine.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{"refreshToken": req.RefreshToken}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		// The logout contract only distinguishes malformed tokens.
		writeBadRequest(w, r, "invalid refresh token", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
