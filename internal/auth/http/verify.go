package http

import (
	"net/http"

	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/pkg/httpx"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleResendVerification re-queues a verification email. The response does
// not reveal whether the address has an account.
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{"email": req.Email}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if !h.allow(w, r, "resend", req.Email, rate.ResendPerIP, rate.ResendPerEmail) {
		return
	}

	if err := h.AuthService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleVerifyEmail consumes a verification token.
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body", nil)
		return
	}
	if missing := requireFields(map[string]string{"token": req.Token}); len(missing) > 0 {
		writeBadRequest(w, r, "missing required fields", map[string][]string{"missing": missing})
		return
	}

	if err := h.AuthService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
