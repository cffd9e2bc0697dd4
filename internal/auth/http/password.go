package http

import (
	"net/http"

	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/pkg/httpx"
)

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// HandleForgotPassword starts the reset flow. Response is identical for
// known and unknown addresses.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{"email": req.Email}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if !h.allow(w, r, "forgot", req.Email, rate.ForgotPerIP, rate.ForgotPerEmail) {
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{
		"token":       req.Token,
		"newPassword": req.NewPassword,
	}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
