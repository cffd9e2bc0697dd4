package http

import (
	"net/http"
	"strconv"

	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/internal/auth/service"
	"github.com/devcrm/auth-service/pkg/httpx"
	"github.com/devcrm/auth-service/pkg/slogx"
)

// AuthHandler serves the /v1/auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	Limiter     *rate.Limiter

	// Enabled toggles rate limiting for the guarded endpoints.
	Enabled bool
}

// allow enforces the flow's rate limits: IP first, then email if the body
// carried one and the IP check passed. A Redis failure counts as a denial;
// the limiter never fails open. Returns false after writing the response.
func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request, flow, email string, ipRule, emailRule rate.Rule) bool {
	if !h.Enabled {
		return true
	}
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	res, err := h.Limiter.Hit(ctx, flow+":ip", httpx.ClientIP(r), ipRule)
	if err != nil {
		log.Error("rate limiter unavailable", "flow", flow, "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "internal error", nil)
		return false
	}
	if !res.Allowed {
		writeTooManyRequests(w, r, res)
		return false
	}

	if email == "" {
		return true
	}

	res, err = h.Limiter.Hit(ctx, flow+":email", service.NormalizeEmail(email), emailRule)
	if err != nil {
		log.Error("rate limiter unavailable", "flow", flow, "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "internal error", nil)
		return false
	}
	if !res.Allowed {
		writeTooManyRequests(w, r, res)
		return false
	}
	return true
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request, res rate.Result) {
	retryAfter := int(res.ResetAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httpx.WriteError(w, r, http.StatusTooManyRequests, httpx.CodeTooManyRequests,
		"too many requests, slow down", map[string]int{"retryAfterSeconds": retryAfter})
}
