package http

import (
	"errors"
	"net/http"

	"github.com/devcrm/auth-service/internal/auth/service"
	"github.com/devcrm/auth-service/pkg/httpx"
	"github.com/devcrm/auth-service/pkg/slogx"
)

// writeServiceError maps service sentinel errors onto the wire taxonomy.
// Anything unmapped is an internal failure; the detail goes to the log, not
// the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteError(w, r, http.StatusBadRequest, httpx.CodeBadRequest,
			"password must be at least 8 characters", map[string]string{"field": "password"})
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, r, http.StatusConflict, httpx.CodeConflict,
			"email already registered", nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized,
			"Email not verified", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized,
			"invalid email or password", nil)
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized,
			"Invalid session", nil)
	case errors.Is(err, service.ErrInvalidOneTimeToken):
		httpx.WriteError(w, r, http.StatusBadRequest, httpx.CodeBadRequest,
			"invalid or expired token", nil)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, httpx.CodeNotFound,
			"user not found", nil)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, httpx.CodeInternal,
			"internal error", nil)
	}
}

// writeBadRequest reports a validation failure with field detail.
func writeBadRequest(w http.ResponseWriter, r *http.Request, message string, details any) {
	httpx.WriteError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, message, details)
}
